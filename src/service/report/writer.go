// Package report writes tool reports and the run summaries derived from them.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"cq-suite/src/config"
	"cq-suite/src/model"
	"cq-suite/src/util"
)

// Writer persists reports into the configured report directory
type Writer struct {
	cfg *config.Config
}

// NewWriter creates a new report writer
func NewWriter(cfg *config.Config) *Writer {
	return &Writer{cfg: cfg}
}

// Dir returns the report directory
func (w *Writer) Dir() string {
	return w.cfg.Project.ReportDir
}

// WriteToolReport writes report as indented JSON and returns its path
func (w *Writer) WriteToolReport(fileName string, report any) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", fileName, err)
	}
	return w.writeFile(fileName, data)
}

func (w *Writer) writeFile(fileName string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir(), 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(w.Dir(), fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	util.Debug("Report written: %s (%d bytes)", path, len(data))
	return path, nil
}

// NewAnalysisSummary builds the summary of a run from its tool results
func NewAnalysisSummary(cfg *config.Config, results []model.ToolResult, startedAt time.Time, duration time.Duration, filesAnalyzed int) *model.AnalysisSummary {
	s := &model.AnalysisSummary{
		RunID:           uuid.NewString(),
		ProjectName:     cfg.Project.Name,
		ProjectRoot:     cfg.Project.Root,
		StartedAt:       startedAt.UTC(),
		DurationSeconds: round2(duration.Seconds()),
		FilesAnalyzed:   filesAnalyzed,
		AnalysisResults: make(map[string]bool, len(results)),
		ToolDetails:     make(map[string]model.ToolResult, len(results)),
		SuccessfulTools: []string{},
		FailedTools:     []string{},
	}

	for _, r := range results {
		if _, dup := s.AnalysisResults[r.Name]; dup {
			continue
		}
		s.AnalysisResults[r.Name] = r.Succeeded()
		s.ToolDetails[r.Name] = r
		if r.Succeeded() {
			s.SuccessfulTools = append(s.SuccessfulTools, r.Name)
		} else {
			s.FailedTools = append(s.FailedTools, r.Name)
		}
	}

	s.TotalTools = len(s.AnalysisResults)
	if s.TotalTools > 0 {
		s.SuccessRate = round2(float64(len(s.SuccessfulTools)) / float64(s.TotalTools))
	}
	return s
}

// WriteAnalysisSummary writes the run summary
func (w *Writer) WriteAnalysisSummary(s *model.AnalysisSummary) (string, error) {
	return w.WriteToolReport(w.cfg.Output.SummaryOutput, s)
}

// numericSource is a tool report the numeric summary reads values from
type numericSource struct {
	tool    string
	file    string
	extract func(doc gjson.Result, s *model.NumericSummary)
}

func (w *Writer) numericSources() []numericSource {
	out := w.cfg.Output
	return []numericSource{
		{"pylint", out.PylintOutput, func(doc gjson.Result, s *model.NumericSummary) {
			s.OverallScores["pylint_score"] = doc.Get("score").Float()
			s.Metrics["pylint_issues"] = doc.Get("total_issues").Int()
			s.Metrics["pylint_files_analyzed"] = doc.Get("files_analyzed").Int()
		}},
		{"test_coverage", out.CoverageOutput, func(doc gjson.Result, s *model.NumericSummary) {
			s.OverallScores["coverage_percentage"] = doc.Get("coverage_percentage").Float()
			grade := doc.Get("coverage_grade")
			if !grade.Exists() {
				s.OverallScores["coverage_grade"] = "F"
			} else {
				s.OverallScores["coverage_grade"] = grade.String()
			}
			s.Metrics["total_files_coverage"] = doc.Get("summary.total_files").Int()
			s.Metrics["covered_statements"] = doc.Get("summary.statements.covered").Int()
			s.Metrics["total_statements"] = doc.Get("summary.statements.total").Int()
		}},
		{"docstrings", out.DocstringOut, func(doc gjson.Result, s *model.NumericSummary) {
			if doc.Get("total_functions").Int() <= 0 {
				return
			}
			s.OverallScores["docstring_coverage"] = doc.Get("docstring_coverage_percent").Float()
			s.Metrics["documented_functions"] = doc.Get("documented_functions").Int()
			s.Metrics["total_functions"] = doc.Get("total_functions").Int()
		}},
		// code metrics runs after docstrings so its function total wins
		{"code_metrics", out.MetricsOutput, func(doc gjson.Result, s *model.NumericSummary) {
			sum := doc.Get("summary")
			s.Metrics["total_files"] = sum.Get("total_files").Int()
			s.Metrics["total_code_lines"] = sum.Get("total_code_lines").Int()
			s.Metrics["total_functions"] = sum.Get("total_functions").Int()
			s.Metrics["total_classes"] = sum.Get("total_classes").Int()
		}},
		{"unused", out.UnusedOutput, func(doc gjson.Result, s *model.NumericSummary) {
			count := doc.Get("unused_items_count").Int()
			s.OverallScores["unused_items_count"] = count
			s.Metrics["unused_total_files"] = doc.Get("total_defined_files").Int()
			s.Metrics["unused_items"] = count
		}},
	}
}

// BuildNumericSummary reads the tool reports present in the report directory
// and collects their headline numbers. Missing or unparseable reports are skipped.
func (w *Writer) BuildNumericSummary(now time.Time) *model.NumericSummary {
	s := &model.NumericSummary{
		ProjectName:     w.cfg.Project.Name,
		ProjectRoot:     w.cfg.Project.Root,
		AnalysisDate:    now.Format(time.RFC3339),
		OverallScores:   map[string]any{},
		Metrics:         map[string]any{},
		ToolsAvailable:  []string{},
		ReportsLocation: w.Dir(),
	}

	for _, src := range w.numericSources() {
		path := filepath.Join(w.Dir(), src.file)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				util.Warn("Could not read %s report: %v", src.tool, err)
			}
			continue
		}
		if !gjson.ValidBytes(data) {
			util.Warn("Could not parse %s report: invalid JSON in %s", src.tool, path)
			continue
		}
		src.extract(gjson.ParseBytes(data), s)
		s.ToolsAvailable = append(s.ToolsAvailable, src.tool)
	}

	return s
}

// WriteNumericSummary writes the numeric summary
func (w *Writer) WriteNumericSummary(s *model.NumericSummary) (string, error) {
	return w.WriteToolReport(w.cfg.Output.NumericOutput, s)
}

// WriteText writes a rendered summary under fileName
func (w *Writer) WriteText(fileName, content string) (string, error) {
	return w.writeFile(fileName, []byte(content))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
