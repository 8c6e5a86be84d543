package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cq-suite/src/config"
	"cq-suite/src/model"
	"cq-suite/src/service/discovery"
	"cq-suite/src/service/report"
	"cq-suite/src/service/tool"
	"cq-suite/src/util"
)

// AnalysisController orchestrates a code quality run
type AnalysisController struct {
	cfg      *config.Config
	files    *discovery.Provider
	registry *tool.Registry
	writer   *report.Writer
	now      func() time.Time
}

// NewAnalysisController creates a new analysis controller. A nil executor
// runs real subprocesses.
func NewAnalysisController(cfg *config.Config, exec tool.Executor) *AnalysisController {
	files := discovery.NewProvider(discovery.OptionsFromConfig(cfg))
	return &AnalysisController{
		cfg:      cfg,
		files:    files,
		registry: tool.NewRegistry(files, exec, cfg),
		writer:   report.NewWriter(cfg),
		now:      time.Now,
	}
}

// AnalyzeRequest represents a request to run tools against the configured project
type AnalyzeRequest struct {
	Tools []string
}

// AnalysisOutcome holds everything a run produced
type AnalysisOutcome struct {
	Results      []model.ToolResult
	Summary      *model.AnalysisSummary
	Numeric      *model.NumericSummary
	SummaryPath  string
	NumericPath  string
	ExtraReports []string
}

// Registry returns the tool registry
func (c *AnalysisController) Registry() *tool.Registry {
	return c.registry
}

// Files runs discovery for the configured project
func (c *AnalysisController) Files(ctx context.Context) (*discovery.Result, error) {
	if !c.cfg.HasProject() {
		return nil, config.ErrNoActiveConfig
	}
	return c.files.Result(ctx)
}

// Analyze runs the requested tools and writes the run summaries
func (c *AnalysisController) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisOutcome, error) {
	if !c.cfg.HasProject() {
		return nil, config.ErrNoActiveConfig
	}
	if len(req.Tools) == 0 {
		return nil, errors.New("no tools selected")
	}

	startTime := c.now()
	util.Info("Starting analysis for project: %s (%s)", c.cfg.Project.Name, c.cfg.Project.Root)

	// each run sees the tree as it is now
	c.files.Reset()

	filesAnalyzed := 0
	if res, err := c.files.Result(ctx); err != nil {
		util.Warn("File discovery failed: %v", err)
	} else {
		filesAnalyzed = len(res.Files)
	}

	runner := tool.NewRunner(c.registry, c.writer, c.cfg)
	results := runner.Run(ctx, req.Tools)

	outcome := &AnalysisOutcome{Results: results}
	outcome.Summary = report.NewAnalysisSummary(c.cfg, results, startTime, c.now().Sub(startTime), filesAnalyzed)

	var err error
	outcome.SummaryPath, err = c.writer.WriteAnalysisSummary(outcome.Summary)
	if err != nil {
		return outcome, fmt.Errorf("saving analysis summary: %w", err)
	}
	util.Info("Analysis summary saved to: %s", outcome.SummaryPath)

	outcome.Numeric = c.writer.BuildNumericSummary(c.now())
	outcome.NumericPath, err = c.writer.WriteNumericSummary(outcome.Numeric)
	if err != nil {
		return outcome, fmt.Errorf("saving numeric summary: %w", err)
	}
	util.Info("Numeric summary saved to: %s", outcome.NumericPath)

	reportCtrl := NewReportController(c.cfg, c.writer)
	outcome.ExtraReports, err = reportCtrl.GenerateReports(&report.Run{
		Summary: outcome.Summary,
		Numeric: outcome.Numeric,
		Results: results,
	})
	if err != nil {
		return outcome, err
	}

	util.Info("Analysis complete: %d/%d tools succeeded (took %v)",
		len(outcome.Summary.SuccessfulTools), outcome.Summary.TotalTools, c.now().Sub(startTime))
	return outcome, nil
}
