package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"cq-suite/src/util"
)

// ExecResult holds the captured output of a finished command
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs external commands. A non-zero exit status is not an error;
// errors are reserved for commands that could not be started.
type Executor interface {
	Run(ctx context.Context, dir, name string, args ...string) (*ExecResult, error)
}

// CommandExecutor runs commands with os/exec
type CommandExecutor struct{}

// Run executes name with args in dir
func (CommandExecutor) Run(ctx context.Context, dir, name string, args ...string) (*ExecResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", name, ErrUnavailable)
	default:
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
}

// pythonCommand splits the configured interpreter command line
func pythonCommand(python string) ([]string, error) {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}
	fields, err := shell.Fields(python, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid python command %q: %w", python, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("invalid python command %q", python)
	}
	return fields, nil
}

// RunModule runs `python -m module args...` in dir. A missing module is
// reported as ErrUnavailable.
func (b *BaseTool) RunModule(ctx context.Context, dir, module string, args ...string) (*ExecResult, error) {
	cmdline, err := pythonCommand(b.Cfg.Tools.Python)
	if err != nil {
		return nil, err
	}

	argv := append(cmdline[1:len(cmdline):len(cmdline)], "-m", module)
	argv = append(argv, args...)

	util.Debug("Executing: %s %s", cmdline[0], strings.Join(argv, " "))
	res, err := b.Exec.Run(ctx, dir, cmdline[0], argv...)
	if err != nil {
		return nil, err
	}

	if res.ExitCode != 0 && strings.Contains(res.Stderr, "No module named "+module) {
		return nil, fmt.Errorf("python module %s is not installed: %w", module, ErrUnavailable)
	}
	return res, nil
}
