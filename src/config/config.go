package config

import "time"

// Config is the root configuration structure. The same structure is used for
// suite defaults and for the active project configuration written by
// `cq configure`.
type Config struct {
	Agent       AgentConfig       `yaml:"agent" mapstructure:"agent"`
	Project     ProjectConfig     `yaml:"project" mapstructure:"project"`
	Discovery   DiscoveryConfig   `yaml:"discovery" mapstructure:"discovery"`
	Tools       ToolsConfig       `yaml:"tools" mapstructure:"tools"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// AgentConfig contains suite metadata
type AgentConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Version     string `yaml:"version" mapstructure:"version"`
	Description string `yaml:"description" mapstructure:"description"`
}

// ProjectConfig describes the project under analysis
type ProjectConfig struct {
	Root             string   `yaml:"root" mapstructure:"root"`
	Name             string   `yaml:"name" mapstructure:"name"`
	PackageName      string   `yaml:"package_name,omitempty" mapstructure:"package_name"`
	PythonRequires   string   `yaml:"python_requires,omitempty" mapstructure:"python_requires"`
	IncludeDirs      []string `yaml:"include_dirs" mapstructure:"include_dirs"`
	ExcludePatterns  []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
	ReportDir        string   `yaml:"report_dir" mapstructure:"report_dir"`
	DetectedFeatures []string `yaml:"detected_features,omitempty" mapstructure:"detected_features"`
	TestDir          string   `yaml:"test_dir,omitempty" mapstructure:"test_dir"`
	OpenAPIPath      string   `yaml:"openapi_path,omitempty" mapstructure:"openapi_path"`
}

// DiscoveryConfig contains file discovery settings
type DiscoveryConfig struct {
	Extensions     []string `yaml:"extensions" mapstructure:"extensions"`
	FollowSymlinks bool     `yaml:"follow_symlinks" mapstructure:"follow_symlinks"`
}

// ToolsConfig contains settings for all analysis tools
type ToolsConfig struct {
	// Python is the interpreter command line, e.g. "python3" or "poetry run python".
	Python       string             `yaml:"python" mapstructure:"python"`
	Timeout      time.Duration      `yaml:"timeout" mapstructure:"timeout"`
	Pylint       PylintConfig       `yaml:"pylint" mapstructure:"pylint"`
	Vulture      VultureConfig      `yaml:"vulture" mapstructure:"vulture"`
	Coverage     CoverageConfig     `yaml:"coverage" mapstructure:"coverage"`
	Docstrings   DocstringsConfig   `yaml:"docstrings" mapstructure:"docstrings"`
	CodeMetrics  CodeMetricsConfig  `yaml:"code_metrics" mapstructure:"code_metrics"`
	APIDoc       APIDocConfig       `yaml:"api_doc" mapstructure:"api_doc"`
	ShowProgress bool               `yaml:"show_progress" mapstructure:"show_progress"`
}

// PylintConfig contains pylint settings
type PylintConfig struct {
	FileLimit     int      `yaml:"file_limit" mapstructure:"file_limit"`
	BatchSize     int      `yaml:"batch_size" mapstructure:"batch_size"`
	Workers       int      `yaml:"workers" mapstructure:"workers"`
	MaxLineLength int      `yaml:"max_line_length" mapstructure:"max_line_length"`
	Disable       []string `yaml:"disable" mapstructure:"disable"`
}

// VultureConfig contains vulture settings
type VultureConfig struct {
	MinConfidence int `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxItems      int `yaml:"max_items" mapstructure:"max_items"`
}

// CoverageConfig contains test coverage settings
type CoverageConfig struct {
	TestDirCandidates []string `yaml:"test_dir_candidates" mapstructure:"test_dir_candidates"`
	HTMLReport        bool     `yaml:"html_report" mapstructure:"html_report"`
}

// DocstringsConfig contains docstring coverage settings
type DocstringsConfig struct {
	FunctionPatterns []string `yaml:"function_patterns" mapstructure:"function_patterns"`
}

// CodeMetricsConfig contains code metrics settings
type CodeMetricsConfig struct {
	MaxFileDetails int `yaml:"max_file_details" mapstructure:"max_file_details"`
}

// APIDocConfig contains API documentation coverage settings
type APIDocConfig struct {
	Candidates []string `yaml:"candidates" mapstructure:"candidates"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	MaxParallelTools int `yaml:"max_parallel_tools" mapstructure:"max_parallel_tools"`
}

// OutputConfig contains report file names and summary formats
type OutputConfig struct {
	Formats        []string `yaml:"formats" mapstructure:"formats"`
	PylintOutput   string   `yaml:"pylint_output" mapstructure:"pylint_output"`
	UnusedOutput   string   `yaml:"unused_output" mapstructure:"unused_output"`
	DocstringOut   string   `yaml:"docstring_output" mapstructure:"docstring_output"`
	APIDocOutput   string   `yaml:"api_doc_output" mapstructure:"api_doc_output"`
	CoverageOutput string   `yaml:"test_coverage_output" mapstructure:"test_coverage_output"`
	MetricsOutput  string   `yaml:"code_metrics_output" mapstructure:"code_metrics_output"`
	SummaryOutput  string   `yaml:"analysis_summary_output" mapstructure:"analysis_summary_output"`
	NumericOutput  string   `yaml:"quality_numeric_output" mapstructure:"quality_numeric_output"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level            string `yaml:"level" mapstructure:"level"`
	Format           string `yaml:"format" mapstructure:"format"` // text, json
	File             string `yaml:"file" mapstructure:"file"`
	IncludeTimestamp bool   `yaml:"include_timestamp" mapstructure:"include_timestamp"`
	IncludeCaller    bool   `yaml:"include_caller" mapstructure:"include_caller"`
}

// HasProject reports whether a project has been configured
func (c *Config) HasProject() bool {
	return c.Project.Root != ""
}
