package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ActiveConfigFile is the file name of the active project configuration
const ActiveConfigFile = "cq_active_config.yaml"

// ErrNoActiveConfig is returned when no project has been configured yet
var ErrNoActiveConfig = errors.New("no active configuration")

var envVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::-([^}]*))?\}`)

// envBindings maps config keys to environment variables that override them
var envBindings = map[string]string{
	"logging.level":      "CQ_LOG_LEVEL",
	"logging.format":     "CQ_LOG_FORMAT",
	"project.report_dir": "CQ_REPORT_DIR",
	"tools.python":       "CQ_PYTHON",
}

// Loader handles configuration loading and saving
type Loader struct {
	path string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Path returns the file the last Load call resolved, or the path Save should
// use when nothing was loaded.
func (l *Loader) Path() string {
	if l.path != "" {
		return l.path
	}
	return DefaultConfigPath()
}

// DefaultConfigPath returns the default location of the active configuration
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ActiveConfigFile
	}
	return filepath.Join(home, ".cq-suite", ActiveConfigFile)
}

// Load loads configuration from a YAML file with environment variable substitution.
// Environment variables can be referenced in the YAML using:
//   - ${VAR_NAME} - substitutes the value of VAR_NAME, empty string if not set
//   - ${VAR_NAME:-default} - substitutes VAR_NAME or "default" if not set
//
// A missing file is not an error: defaults are returned and the caller decides
// whether a configured project is required.
func (l *Loader) Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	filePath := l.resolveConfigPath(configPath)
	l.path = filePath
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// configure writes to this path later
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			expanded := l.expandEnvVars(string(data))
			if err := v.ReadConfig(bytes.NewReader([]byte(expanded))); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories
func (l *Loader) Save(cfg *Config, path string) (string, error) {
	if path == "" {
		path = l.Path()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	l.path = path
	return path, nil
}

func (l *Loader) resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	defaults := []string{
		ActiveConfigFile,
		DefaultConfigPath(),
	}

	for _, path := range defaults {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// expandEnvVars expands environment variable references in the input string.
func (l *Loader) expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultVal := ""
		if len(submatches) >= 3 {
			defaultVal = submatches[2]
		}

		if val, exists := os.LookupEnv(varName); exists {
			return val
		}

		return defaultVal
	})
}
