package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"cq-suite/src/config"
	"cq-suite/src/service/discovery"
	"cq-suite/src/util"
)

// ConfigureRequest represents a request to configure a project for analysis
type ConfigureRequest struct {
	ProjectPath     string
	IncludeDirs     []string // relative to the project root or absolute; empty = detected
	ExcludePatterns []string // added to the default exclusions
	ReportsDir      string
	ConfigPath      string // where to save; empty = loader default
}

// ConfigureResult is the outcome of a configure request
type ConfigureResult struct {
	Config     *config.Config
	Detection  *discovery.Detection
	ConfigPath string
}

// ConfigureController builds and saves the active project configuration
type ConfigureController struct {
	base   *config.Config
	loader *config.Loader
}

// NewConfigureController creates a new configure controller. Settings outside
// the project section are carried over from base.
func NewConfigureController(base *config.Config, loader *config.Loader) *ConfigureController {
	return &ConfigureController{base: base, loader: loader}
}

// Detect inspects the project without saving anything
func (c *ConfigureController) Detect(projectPath string) (*discovery.Detection, error) {
	util.Info("Analyzing project structure: %s", projectPath)
	return discovery.DetectProject(projectPath)
}

// Configure detects the project, builds its configuration and saves it
func (c *ConfigureController) Configure(req ConfigureRequest) (*ConfigureResult, error) {
	det, err := c.Detect(req.ProjectPath)
	if err != nil {
		return nil, err
	}

	cfg := c.BuildConfig(req, det)

	if err := os.MkdirAll(cfg.Project.ReportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}

	path, err := c.loader.Save(cfg, req.ConfigPath)
	if err != nil {
		return nil, err
	}
	util.Info("Configuration saved to %s", path)

	return &ConfigureResult{Config: cfg, Detection: det, ConfigPath: path}, nil
}

// BuildConfig derives the project configuration from a detection result
func (c *ConfigureController) BuildConfig(req ConfigureRequest, det *discovery.Detection) *config.Config {
	cfg := *c.base
	root := det.Root

	includes := det.SuggestedIncludeDirs
	if len(req.IncludeDirs) > 0 {
		includes = make([]string, 0, len(req.IncludeDirs))
		for _, dir := range req.IncludeDirs {
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(root, dir)
			}
			includes = append(includes, filepath.Clean(dir))
		}
	}

	excludes := append([]string(nil), config.DefaultExcludePatterns...)
	excludes = append(excludes, req.ExcludePatterns...)

	reportDir := req.ReportsDir
	if reportDir == "" {
		reportDir = filepath.Join(filepath.Dir(c.configPath(req)), "reports", det.Name+"_cq_reports")
	}
	if abs, err := filepath.Abs(reportDir); err == nil {
		reportDir = abs
	}

	cfg.Project = config.ProjectConfig{
		Root:             root,
		Name:             det.Name,
		PackageName:      det.PackageName,
		PythonRequires:   det.PythonRequires,
		IncludeDirs:      includes,
		ExcludePatterns:  excludes,
		ReportDir:        reportDir,
		DetectedFeatures: det.Features,
		TestDir:          c.base.Project.TestDir,
		OpenAPIPath:      c.base.Project.OpenAPIPath,
	}

	util.Debug("Built configuration for %s: %d include dirs, %d exclude patterns, reports in %s",
		det.Name, len(includes), len(excludes), reportDir)
	return &cfg
}

func (c *ConfigureController) configPath(req ConfigureRequest) string {
	if req.ConfigPath != "" {
		return req.ConfigPath
	}
	return c.loader.Path()
}
