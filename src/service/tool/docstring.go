package tool

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

// DocstringTool measures how many functions and methods carry a docstring
type DocstringTool struct {
	BaseTool
}

// NewDocstringTool creates a new docstring coverage tool
func NewDocstringTool(base BaseTool) *DocstringTool {
	return &DocstringTool{BaseTool: base}
}

// Name returns the tool name
func (t *DocstringTool) Name() string {
	return "docstrings"
}

// Description returns the tool description
func (t *DocstringTool) Description() string {
	return "Docstring Coverage - Documentation coverage analysis"
}

// OutputFile returns the report file name
func (t *DocstringTool) OutputFile() string {
	return t.Cfg.Output.DocstringOut
}

// Run checks every function in the discovered files
func (t *DocstringTool) Run(ctx context.Context) (any, error) {
	files, err := t.PythonFiles(ctx)
	if err != nil {
		return nil, err
	}

	parser, err := newPyParser()
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	ignored := util.NamePatterns(t.Cfg.Tools.Docstrings.FunctionPatterns)
	report := &model.DocstringReport{UndocumentedDetails: []model.UndocumentedFunction{}}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := parser.parseFile(path)
		if err != nil {
			util.Debug("Skipping %s: %v", path, err)
			report.SkippedFiles = append(report.SkippedFiles, path)
			continue
		}
		checkDocstrings(f, path, ignored, report)
		f.Close()
	}

	finishDocstringReport(report)
	util.Info("Docstring coverage: %.2f%% (%d/%d functions documented)",
		report.CoveragePercent, report.DocumentedFunctions, report.TotalFunctions)
	return report, nil
}

func checkDocstrings(f *pyFile, path string, ignored []*regexp.Regexp, report *model.DocstringReport) {
	walkScoped(f.root(), func(n *sitter.Node, _ bool) {
		if !isFunction(n) {
			return
		}
		name := nodeName(n, f.src)
		if util.MatchesAny(ignored, name) {
			return
		}

		report.TotalFunctions++
		if doc, ok := docstring(n, f.src); ok && strings.TrimSpace(doc) != "" {
			report.DocumentedFunctions++
			return
		}
		report.UndocumentedDetails = append(report.UndocumentedDetails, model.UndocumentedFunction{
			File:     path,
			Function: name,
			Line:     nodeLine(n),
		})
	})
}

func finishDocstringReport(report *model.DocstringReport) {
	report.UndocumentedFunctions = len(report.UndocumentedDetails)
	if report.TotalFunctions == 0 {
		report.CoveragePercent = 100
		return
	}
	report.CoveragePercent = round2(float64(report.DocumentedFunctions) / float64(report.TotalFunctions) * 100)
}
