package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cq-suite/src/config"
	"cq-suite/src/service/discovery"
)

// fakeExecutor answers commands from a handler and records every call
type fakeExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	handler func(dir, name string, args []string) (*ExecResult, error)
}

func (f *fakeExecutor) Run(_ context.Context, dir, name string, args ...string) (*ExecResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.handler == nil {
		return &ExecResult{}, nil
	}
	return f.handler(dir, name, args)
}

func (f *fakeExecutor) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// newTestProject writes files under a temp root and returns a base tool for it
func newTestProject(t *testing.T, exec Executor, files map[string]string) (BaseTool, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	cfg := config.DefaultConfig()
	cfg.Project.Root = root
	cfg.Project.Name = "demo"
	cfg.Project.ReportDir = filepath.Join(root, "reports")
	cfg.Project.ExcludePatterns = []string{"reports"}
	cfg.Tools.ShowProgress = false

	provider := discovery.NewProvider(discovery.OptionsFromConfig(cfg))
	return NewBaseTool(provider, exec, cfg), root
}

func TestParseToolList(t *testing.T) {
	assert.Equal(t, []string{"pylint", "docstrings"}, ParseToolList(" pylint, ,docstrings ,"))
	assert.Nil(t, ParseToolList(""))
	assert.Equal(t, []string{"pylint", "unused"}, ParseToolList("pylint,unused,pylint"))
}

func TestResolvePreset(t *testing.T) {
	tools, err := ResolvePreset("Quick")
	require.NoError(t, err)
	assert.Equal(t, []string{"code_metrics", "docstrings"}, tools)

	tools[0] = "mutated"
	assert.Equal(t, "code_metrics", Presets["quick"][0])

	_, err = ResolvePreset("nope")
	assert.ErrorContains(t, err, "unknown preset")

	for _, name := range PresetNames {
		_, ok := Presets[name]
		assert.True(t, ok, name)
	}
	assert.Equal(t, Names, Presets["all"])
}

func TestRegistry_AllToolsRegistered(t *testing.T) {
	base, _ := newTestProject(t, &fakeExecutor{}, nil)
	reg := NewRegistry(base.Files, base.Exec, base.Cfg)

	for _, name := range Names {
		tl, ok := reg.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, tl.Name())
		assert.NotEmpty(t, tl.OutputFile())
	}
	assert.Len(t, reg.Descriptions(), len(Names))
}

func TestPythonFiles_NoFiles(t *testing.T) {
	base, _ := newTestProject(t, &fakeExecutor{}, map[string]string{"README.md": "hi"})
	_, err := base.PythonFiles(context.Background())
	assert.ErrorIs(t, err, discovery.ErrNoFiles)
}

func TestPythonCommand(t *testing.T) {
	got, err := pythonCommand(`poetry run "python 3"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"poetry", "run", "python 3"}, got)

	got, err = pythonCommand("")
	require.NoError(t, err)
	assert.Equal(t, []string{"python3"}, got)

	_, err = pythonCommand(`python "unterminated`)
	assert.Error(t, err)
}

func TestRunModule(t *testing.T) {
	exec := &fakeExecutor{handler: func(_, _ string, args []string) (*ExecResult, error) {
		if args[len(args)-1] == "missing" {
			return &ExecResult{ExitCode: 1, Stderr: "/usr/bin/python3: No module named vulture"}, nil
		}
		return &ExecResult{Stdout: "ok"}, nil
	}}
	base, root := newTestProject(t, exec, nil)
	base.Cfg.Tools.Python = "uv run python"

	res, err := base.RunModule(context.Background(), root, "vulture", "file.py")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
	assert.Equal(t, []string{"uv", "run", "python", "-m", "vulture", "file.py"}, exec.Calls()[0])

	_, err = base.RunModule(context.Background(), root, "vulture", "missing")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCommandExecutor_MissingBinary(t *testing.T) {
	_, err := CommandExecutor{}.Run(context.Background(), t.TempDir(), "cq-suite-no-such-binary")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCommandExecutor_ExitCode(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	res, err := CommandExecutor{}.Run(context.Background(), t.TempDir(), "/bin/sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out", strings.TrimSpace(res.Stdout))
	assert.Equal(t, "err", strings.TrimSpace(res.Stderr))
}
