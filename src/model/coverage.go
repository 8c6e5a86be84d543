package model

// FileCoverage contains line coverage for a single source file
type FileCoverage struct {
	Filename        string  `json:"filename"`
	TotalLines      int     `json:"total_lines"`
	CoveredLines    int     `json:"covered_lines"`
	MissingLines    int     `json:"missing_lines"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// CoverageTotals are the overall figures reported by coverage.py
type CoverageTotals struct {
	PercentCovered     float64 `json:"percent_covered"`
	TotalStatements    int     `json:"total_statements"`
	CoveredStatements  int     `json:"covered_statements"`
	MissingStatements  int     `json:"missing_statements"`
	ExcludedStatements int     `json:"excluded_statements"`
	BranchesTotal      int     `json:"branches_total"`
	BranchesCovered    int     `json:"branches_covered"`
	BranchesMissing    int     `json:"branches_missing"`
}

// FilesByCategory counts files per coverage band
type FilesByCategory struct {
	Excellent int `json:"excellent_90_plus"`
	Good      int `json:"good_70_to_89"`
	Fair      int `json:"fair_50_to_69"`
	Poor      int `json:"poor_below_50"`
}

// StatementCounts summarizes statement coverage
type StatementCounts struct {
	Total   int `json:"total"`
	Covered int `json:"covered"`
	Missing int `json:"missing"`
}

// CoverageSummary is the summary block of a coverage report
type CoverageSummary struct {
	TotalFiles      int             `json:"total_files"`
	FilesByCategory FilesByCategory `json:"files_by_category"`
	Statements      StatementCounts `json:"statements"`
}

// CoveragePriority is a file that needs more tests
type CoveragePriority struct {
	Filename        string  `json:"filename"`
	FullPath        string  `json:"full_path,omitempty"`
	CoveragePercent float64 `json:"coverage_percent"`
	MissingLines    int     `json:"missing_lines"`
}

// CoverageReport is the output of the test coverage tool
type CoverageReport struct {
	ProjectName        string             `json:"project_name"`
	AnalysisDate       string             `json:"analysis_date"`
	CoveragePercentage float64            `json:"coverage_percentage"`
	CoverageGrade      string             `json:"coverage_grade"`
	CoverageStatus     string             `json:"coverage_status"`
	Summary            CoverageSummary    `json:"summary"`
	TopPriorities      []CoveragePriority `json:"top_priorities"`
	QuickWins          []CoveragePriority `json:"quick_wins"`
	Recommendations    []string           `json:"recommendations"`
	TestsFound         *int               `json:"tests_found,omitempty"`
}
