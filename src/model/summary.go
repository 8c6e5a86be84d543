package model

import "time"

// ToolStatus is the outcome of a single tool run
type ToolStatus string

const (
	ToolSucceeded   ToolStatus = "success"
	ToolFailed      ToolStatus = "failed"
	ToolUnavailable ToolStatus = "unavailable"
)

// ToolResult records the outcome of a single tool
type ToolResult struct {
	Name       string        `json:"name"`
	Status     ToolStatus    `json:"status"`
	Duration   time.Duration `json:"-"`
	DurationS  float64       `json:"duration_seconds"`
	ReportPath string        `json:"report,omitempty"`
	Error      string        `json:"error,omitempty"`
	Report     any           `json:"-"`
}

// Succeeded reports whether the tool produced its report
func (r ToolResult) Succeeded() bool {
	return r.Status == ToolSucceeded
}

// AnalysisSummary is written after every run
type AnalysisSummary struct {
	RunID           string                `json:"run_id"`
	ProjectName     string                `json:"project_name"`
	ProjectRoot     string                `json:"project_root"`
	StartedAt       time.Time             `json:"started_at"`
	DurationSeconds float64               `json:"duration_seconds"`
	FilesAnalyzed   int                   `json:"files_analyzed"`
	AnalysisResults map[string]bool       `json:"analysis_results"`
	ToolDetails     map[string]ToolResult `json:"tool_details"`
	SuccessfulTools []string              `json:"successful_tools"`
	FailedTools     []string              `json:"failed_tools"`
	TotalTools      int                   `json:"total_tools"`
	SuccessRate     float64               `json:"success_rate"`
}

// NumericSummary aggregates headline numbers from every tool report
type NumericSummary struct {
	ProjectName     string         `json:"project_name"`
	ProjectRoot     string         `json:"project_root"`
	AnalysisDate    string         `json:"analysis_date"`
	OverallScores   map[string]any `json:"overall_scores"`
	Metrics         map[string]any `json:"metrics"`
	ToolsAvailable  []string       `json:"tools_available"`
	ReportsLocation string         `json:"reports_location"`
}
