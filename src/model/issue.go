package model

// IssueType represents the pylint message category
type IssueType string

const (
	IssueConvention IssueType = "convention"
	IssueRefactor   IssueType = "refactor"
	IssueWarning    IssueType = "warning"
	IssueError      IssueType = "error"
	IssueFatal      IssueType = "fatal"
	IssueUnknown    IssueType = "unknown"
)

// IssueTypes lists the categories counted in a pylint report
var IssueTypes = []IssueType{IssueConvention, IssueRefactor, IssueWarning, IssueError, IssueFatal}

// IssueTypeFromCode maps a pylint message id (C0114, W0611, ...) to its category
func IssueTypeFromCode(msgID string) IssueType {
	if msgID == "" {
		return IssueUnknown
	}
	switch msgID[0] {
	case 'C':
		return IssueConvention
	case 'R':
		return IssueRefactor
	case 'W':
		return IssueWarning
	case 'E':
		return IssueError
	case 'F':
		return IssueFatal
	}
	return IssueUnknown
}

// LintIssue represents a single pylint message
type LintIssue struct {
	Type      IssueType `json:"type"`
	Module    string    `json:"module"`
	Obj       string    `json:"obj"`
	Line      int       `json:"line"`
	Column    int       `json:"column"`
	Path      string    `json:"path"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	MessageID string    `json:"message-id"`
}

// PylintReport is the output of the pylint tool
type PylintReport struct {
	Issues           []LintIssue       `json:"issues"`
	IssueCounts      map[IssueType]int `json:"issue_counts"`
	Score            float64           `json:"score"`
	Percentage       float64           `json:"percentage"`
	TotalIssues      int               `json:"total_issues"`
	FilesAnalyzed    int               `json:"files_analyzed"`
	FailedFiles      []string          `json:"failed_files"`
	IndividualScores []float64         `json:"individual_scores"`
	AnalysisMethod   string            `json:"analysis_method"`
	BatchSize        int               `json:"batch_size"`
}

// UnusedItem represents a single vulture finding
type UnusedItem struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Symbol  string `json:"symbol"`
}

// UnusedReport is the output of the unused code tool
type UnusedReport struct {
	TotalDefinedFiles int          `json:"total_defined_files"`
	UnusedItemsCount  int          `json:"unused_items_count"`
	UnusedItems       []UnusedItem `json:"unused_items"`
}

// UndocumentedFunction is a function or method without a docstring
type UndocumentedFunction struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
}

// DocstringReport is the output of the docstring coverage tool
type DocstringReport struct {
	TotalFunctions        int                    `json:"total_functions"`
	DocumentedFunctions   int                    `json:"documented_functions"`
	UndocumentedFunctions int                    `json:"undocumented_functions"`
	CoveragePercent       float64                `json:"docstring_coverage_percent"`
	UndocumentedDetails   []UndocumentedFunction `json:"undocumented_function_details"`
	SkippedFiles          []string               `json:"skipped_files,omitempty"`
}

// UndocumentedEndpoint is an API operation with neither summary nor description
type UndocumentedEndpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	OperationID string `json:"operationId"`
}

// APIDocReport is the output of the API documentation coverage tool
type APIDocReport struct {
	SpecFile              string                 `json:"spec_file"`
	SpecVersion           string                 `json:"spec_version"`
	TotalEndpoints        int                    `json:"total_endpoints"`
	Documented            int                    `json:"documented"`
	Undocumented          int                    `json:"undocumented"`
	CoveragePercent       float64                `json:"coverage_percent"`
	UndocumentedEndpoints []UndocumentedEndpoint `json:"undocumented_endpoints"`
}
