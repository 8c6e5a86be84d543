// Package tool runs the analysis tools against the discovered file set.
package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cq-suite/src/config"
	"cq-suite/src/service/discovery"
)

// ErrUnavailable marks a tool whose executable or Python module is missing
var ErrUnavailable = errors.New("tool unavailable")

// Tool is the interface for all analysis tools
type Tool interface {
	// Name returns the tool name used on the command line
	Name() string

	// Description returns a one-line description for menus
	Description() string

	// OutputFile returns the report file name inside the report directory
	OutputFile() string

	// Run executes the analysis and returns the report to be written
	Run(ctx context.Context) (any, error)
}

// BaseTool provides common functionality for tools
type BaseTool struct {
	Files *discovery.Provider
	Cfg   *config.Config
	Exec  Executor
}

// NewBaseTool creates a new base tool
func NewBaseTool(files *discovery.Provider, exec Executor, cfg *config.Config) BaseTool {
	if exec == nil {
		exec = CommandExecutor{}
	}
	return BaseTool{Files: files, Cfg: cfg, Exec: exec}
}

// PythonFiles returns the discovered files, failing with discovery.ErrNoFiles
// when there is nothing to analyze.
func (b *BaseTool) PythonFiles(ctx context.Context) ([]string, error) {
	files, err := b.Files.Files(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, discovery.ErrNoFiles
	}
	return files, nil
}

// Names lists every tool in menu order
var Names = []string{"code_metrics", "docstrings", "pylint", "unused", "test_coverage", "api_doc"}

// Presets are named tool combinations
var Presets = map[string][]string{
	"quick":         {"code_metrics", "docstrings"},
	"standard":      {"code_metrics", "docstrings", "pylint"},
	"comprehensive": {"code_metrics", "docstrings", "pylint", "unused", "api_doc"},
	"documentation": {"docstrings", "api_doc"},
	"quality":       {"pylint", "unused"},
	"all":           {"code_metrics", "docstrings", "pylint", "unused", "test_coverage", "api_doc"},
}

// PresetNames lists the presets in display order
var PresetNames = []string{"quick", "standard", "comprehensive", "documentation", "quality", "all"}

// ResolvePreset returns the tools of a preset
func ResolvePreset(name string) ([]string, error) {
	tools, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		known := make([]string, 0, len(Presets))
		for k := range Presets {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(known, ", "))
	}
	return append([]string(nil), tools...), nil
}

// ParseToolList splits a comma-separated tool list, dropping blanks
func ParseToolList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return UniqueNames(names)
}

// UniqueNames drops repeated names, keeping the first occurrence
func UniqueNames(names []string) []string {
	if names == nil {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Registry holds every tool keyed by name
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry with all tools registered
func NewRegistry(files *discovery.Provider, exec Executor, cfg *config.Config) *Registry {
	base := NewBaseTool(files, exec, cfg)

	return NewRegistryWith(
		NewCodeMetricsTool(base),
		NewDocstringTool(base),
		NewPylintTool(base),
		NewUnusedTool(base),
		NewCoverageTool(base),
		NewAPIDocTool(base),
	)
}

// NewRegistryWith creates a registry from explicit tools
func NewRegistryWith(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Descriptions returns the description of every registered tool in menu order
func (r *Registry) Descriptions() []string {
	out := make([]string, 0, len(Names))
	for _, name := range Names {
		if t, ok := r.tools[name]; ok {
			out = append(out, t.Description())
		}
	}
	return out
}
