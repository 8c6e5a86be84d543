package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cq-suite/src/config"
	"cq-suite/src/model"
	"cq-suite/src/util"
)

// ReportSink persists a tool report and returns where it was written
type ReportSink interface {
	WriteToolReport(fileName string, report any) (string, error)
}

// Runner manages and runs the selected tools.
// It handles lookup, bounded parallel execution and result classification.
type Runner struct {
	registry *Registry
	sink     ReportSink
	cfg      *config.Config
}

// NewRunner creates a new tool runner
func NewRunner(registry *Registry, sink ReportSink, cfg *config.Config) *Runner {
	return &Runner{registry: registry, sink: sink, cfg: cfg}
}

// Run executes the named tools and returns one result per name, in the order
// given. Repeated names run once. Tool failures never abort the run.
func (r *Runner) Run(ctx context.Context, names []string) []model.ToolResult {
	startTime := time.Now()
	names = UniqueNames(names)
	limit := r.cfg.Concurrency.MaxParallelTools
	if limit <= 0 {
		limit = 1
	}

	util.Info("Running selected tools: %s (max parallel: %d)", strings.Join(names, ", "), limit)

	results := make([]model.ToolResult, len(names))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, name := range names {
		g.Go(func() error {
			results[i] = r.runOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Succeeded() {
			succeeded++
		}
	}
	util.Info("Analysis complete: %d/%d tools succeeded (took %v)", succeeded, len(results), time.Since(startTime))
	return results
}

func (r *Runner) runOne(ctx context.Context, name string) model.ToolResult {
	result := model.ToolResult{Name: name}

	t, ok := r.registry.Get(name)
	if !ok {
		util.Error("Unknown tool: %s (available: %s)", name, strings.Join(Names, ", "))
		result.Status = model.ToolFailed
		result.Error = fmt.Sprintf("unknown tool %q", name)
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Status = model.ToolFailed
		result.Error = err.Error()
		return result
	}

	toolCtx := ctx
	if timeout := r.cfg.Tools.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		toolCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	util.Info("Running %s...", t.Name())
	report, err := t.Run(toolCtx)
	result.Duration = time.Since(start)
	result.DurationS = round2(result.Duration.Seconds())

	if err == nil {
		result.ReportPath, err = r.sink.WriteToolReport(t.OutputFile(), report)
		if err != nil {
			err = fmt.Errorf("writing report: %w", err)
		}
	}

	switch {
	case err == nil:
		result.Status = model.ToolSucceeded
		result.Report = report
		util.Info("%s completed (took %v)", t.Name(), result.Duration.Round(time.Millisecond))
	case errors.Is(err, ErrUnavailable):
		result.Status = model.ToolUnavailable
		result.Error = err.Error()
		util.Error("%s not available: %v", t.Name(), err)
	default:
		result.Status = model.ToolFailed
		result.Error = err.Error()
		util.Error("%s failed: %v", t.Name(), err)
	}
	return result
}
