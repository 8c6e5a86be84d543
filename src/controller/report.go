package controller

import (
	"cq-suite/src/config"
	"cq-suite/src/service/report"
	"cq-suite/src/util"
)

// ReportController handles the extra summary formats
type ReportController struct {
	cfg    *config.Config
	writer *report.Writer
}

// NewReportController creates a new report controller
func NewReportController(cfg *config.Config, writer *report.Writer) *ReportController {
	return &ReportController{cfg: cfg, writer: writer}
}

// GenerateReports renders the run in every configured format besides JSON,
// which the analysis always writes.
func (c *ReportController) GenerateReports(run *report.Run) ([]string, error) {
	util.Debug("Generating summaries for %d formats: %v", len(c.cfg.Output.Formats), c.cfg.Output.Formats)
	generator := report.NewGenerator(c.cfg)
	var outputPaths []string

	for _, format := range c.cfg.Output.Formats {
		if format == "json" || format == "" {
			continue
		}

		output, err := generator.Generate(run, format)
		if err != nil {
			util.Error("Failed to generate %s summary: %v", format, err)
			return outputPaths, err
		}

		path, err := c.writer.WriteText(report.FileName(c.cfg.Output.SummaryOutput, format), output)
		if err != nil {
			util.Error("Failed to write %s summary: %v", format, err)
			return outputPaths, err
		}

		util.Info("Summary written: %s", path)
		outputPaths = append(outputPaths, path)
	}

	return outputPaths, nil
}
