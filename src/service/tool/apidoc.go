package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oasdiff/yaml"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

// documentedMethods are the HTTP methods counted as endpoints
var documentedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "OPTIONS": true, "HEAD": true,
}

// errNoAPISpec is returned when no OpenAPI document could be located
var errNoAPISpec = errors.New("no OpenAPI specification file found")

// APIDocTool measures how many API operations carry a summary or description
type APIDocTool struct {
	BaseTool
}

// NewAPIDocTool creates a new API documentation coverage tool
func NewAPIDocTool(base BaseTool) *APIDocTool {
	return &APIDocTool{BaseTool: base}
}

// Name returns the tool name
func (t *APIDocTool) Name() string {
	return "api_doc"
}

// Description returns the tool description
func (t *APIDocTool) Description() string {
	return "API Documentation - OpenAPI documentation coverage"
}

// OutputFile returns the report file name
func (t *APIDocTool) OutputFile() string {
	return t.Cfg.Output.APIDocOutput
}

// Run locates and analyzes the project's OpenAPI document
func (t *APIDocTool) Run(ctx context.Context) (any, error) {
	path, err := t.findSpec()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OpenAPI file: %w", err)
	}

	doc, version, err := loadAPISpec(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI file %s: %w", path, err)
	}

	report := analyzeAPIDoc(doc)
	report.SpecFile = path
	report.SpecVersion = version

	util.Info("API doc coverage: %.2f%% (%d/%d endpoints documented)",
		report.CoveragePercent, report.Documented, report.TotalEndpoints)
	return report, nil
}

func (t *APIDocTool) findSpec() (string, error) {
	root := t.Cfg.Project.Root
	if p := t.Cfg.Project.OpenAPIPath; p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		return p, nil
	}

	candidates := t.Cfg.Tools.APIDoc.Candidates
	for _, name := range candidates {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", errNoAPISpec, root, strings.Join(candidates, ", "))
}

// loadAPISpec parses an OpenAPI 3 or Swagger 2 document (JSON or YAML).
// Swagger 2 documents are converted to OpenAPI 3.
func loadAPISpec(ctx context.Context, data []byte) (*openapi3.T, string, error) {
	var probe struct {
		Swagger string `json:"swagger"`
		OpenAPI string `json:"openapi"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, "", err
	}

	if probe.Swagger != "" {
		var doc2 openapi2.T
		if err := yaml.Unmarshal(data, &doc2); err != nil {
			return nil, "", err
		}
		doc3, err := openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, "", fmt.Errorf("converting swagger %s document: %w", probe.Swagger, err)
		}
		return doc3, probe.Swagger, nil
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, "", err
	}
	return doc, probe.OpenAPI, nil
}

func analyzeAPIDoc(doc *openapi3.T) *model.APIDocReport {
	report := &model.APIDocReport{UndocumentedEndpoints: []model.UndocumentedEndpoint{}}

	var paths map[string]*openapi3.PathItem
	if doc.Paths != nil {
		paths = doc.Paths.Map()
	}

	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for m := range ops {
			if documentedMethods[strings.ToUpper(m)] {
				methods = append(methods, m)
			}
		}
		sort.Strings(methods)

		for _, method := range methods {
			op := ops[method]
			report.TotalEndpoints++
			if op.Summary == "" && op.Description == "" {
				report.UndocumentedEndpoints = append(report.UndocumentedEndpoints, model.UndocumentedEndpoint{
					Path:        path,
					Method:      strings.ToUpper(method),
					OperationID: op.OperationID,
				})
			}
		}
	}

	report.Undocumented = len(report.UndocumentedEndpoints)
	report.Documented = report.TotalEndpoints - report.Undocumented
	if report.TotalEndpoints == 0 {
		report.CoveragePercent = 100
	} else {
		report.CoveragePercent = round2(float64(report.Documented) / float64(report.TotalEndpoints) * 100)
	}
	return report
}
