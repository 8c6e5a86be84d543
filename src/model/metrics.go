package model

// LineMetrics contains line counts for a single file
type LineMetrics struct {
	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	EmptyLines   int `json:"empty_lines"`
}

// ASTMetrics contains structural counts for a single file
type ASTMetrics struct {
	Functions      int `json:"functions"`
	AsyncFunctions int `json:"async_functions"`
	Classes        int `json:"classes"`
	// Methods counts (async) functions nested anywhere inside a class
	Methods int `json:"methods"`
}

// FileMetrics contains metrics for a single file
type FileMetrics struct {
	File        string      `json:"file"`
	LineMetrics LineMetrics `json:"line_metrics"`
	ASTMetrics  ASTMetrics  `json:"ast_metrics"`
}

// BiggestFile identifies the largest file by some line count
type BiggestFile struct {
	File  string `json:"file"`
	Lines int    `json:"lines"`
}

// CodeMetricsSummary contains aggregated code metrics
type CodeMetricsSummary struct {
	TotalFiles          int         `json:"total_files"`
	TotalLines          int         `json:"total_lines"`
	TotalCodeLines      int         `json:"total_code_lines"`
	TotalCommentLines   int         `json:"total_comment_lines"`
	TotalEmptyLines     int         `json:"total_empty_lines"`
	TotalFunctions      int         `json:"total_functions"`
	TotalAsyncFunctions int         `json:"total_async_functions"`
	TotalClasses        int         `json:"total_classes"`
	TotalMethods        int         `json:"total_methods"`
	AvgLinesPerFile     float64     `json:"avg_lines_per_file"`
	AvgFunctionsPerFile float64     `json:"avg_functions_per_file"`
	AvgClassesPerFile   float64     `json:"avg_classes_per_file"`
	BiggestByTotalLines BiggestFile `json:"biggest_file_by_total_lines"`
	BiggestByCodeLines  BiggestFile `json:"biggest_file_by_code_lines"`
}

// CodeMetricsReport is the output of the code metrics tool
type CodeMetricsReport struct {
	Summary     CodeMetricsSummary `json:"summary"`
	FileDetails []FileMetrics      `json:"file_details"`
}
