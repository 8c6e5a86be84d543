package config

import "time"

// DefaultExcludePatterns are always excluded from discovery
var DefaultExcludePatterns = []string{
	"venv", "venv2", ".venv", "env", ".env", "virtualenv", ".virtualenv",
	"__pycache__", "*.pyc", "*.pyo", "*.pyd", ".Python",
	"build", "develop-eggs", "dist", "downloads", "eggs", ".eggs",
	"lib", "lib64", "parts", "sdist", "var", "wheels",
	".installed.cfg", "*.egg-info", ".git", ".gitignore",
	"node_modules", ".npm", ".node_repl_history",
	".coverage", "htmlcov", ".pytest_cache", ".tox",
	".cache", ".mypy_cache", ".dmypy.json", "dmypy.json",
	"*.log", "*.tmp", "*.temp", ".DS_Store", "Thumbs.db",
	".idea", ".vscode", "*.swp", "*.swo", "*~",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:        "cq-suite",
			Version:     "1.0.0",
			Description: "Code quality analysis suite for Python projects",
		},
		Discovery: DiscoveryConfig{
			Extensions:     []string{".py"},
			FollowSymlinks: false,
		},
		Tools: ToolsConfig{
			Python:  "python3",
			Timeout: 30 * time.Minute,
			Pylint: PylintConfig{
				FileLimit:     1000,
				BatchSize:     50,
				Workers:       8,
				MaxLineLength: 150,
				Disable: []string{
					"import-error", "too-few-public-methods",
					"missing-class-docstring", "trailing-whitespace",
				},
			},
			Vulture: VultureConfig{
				MinConfidence: 0,
				MaxItems:      5,
			},
			Coverage: CoverageConfig{
				TestDirCandidates: []string{"tests", "test", "testing", "spec", "specs"},
				HTMLReport:        true,
			},
			CodeMetrics: CodeMetricsConfig{
				MaxFileDetails: 10,
			},
			APIDoc: APIDocConfig{
				Candidates: []string{
					"openapi.json", "openapi.yaml", "openapi.yml",
					"swagger.json", "swagger.yaml", "swagger.yml",
					"api-docs.json", "api-spec.json",
				},
			},
			ShowProgress: true,
		},
		Concurrency: ConcurrencyConfig{
			MaxParallelTools: 1,
		},
		Output: OutputConfig{
			Formats:        []string{"json"},
			PylintOutput:   "pylint_report.json",
			UnusedOutput:   "unused_code_report.json",
			DocstringOut:   "docstring_coverage_report.json",
			APIDocOutput:   "api_doc_coverage_report.json",
			CoverageOutput: "test_coverage_report.json",
			MetricsOutput:  "code_metrics_report.json",
			SummaryOutput:  "analysis_summary.json",
			NumericOutput:  "code_quality_numeric_summary.json",
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			IncludeTimestamp: true,
			IncludeCaller:    false,
		},
	}
}
