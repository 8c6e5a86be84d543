package tool

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

const (
	coverageXMLFile  = "coverage.xml"
	coverageJSONFile = "coverage.json"
	coverageHTMLDir  = "htmlcov"
)

// CoverageTool runs the test suite under coverage.py and grades the result
type CoverageTool struct {
	BaseTool
	now func() time.Time
}

// NewCoverageTool creates a new test coverage tool
func NewCoverageTool(base BaseTool) *CoverageTool {
	return &CoverageTool{BaseTool: base, now: time.Now}
}

// Name returns the tool name
func (t *CoverageTool) Name() string {
	return "test_coverage"
}

// Description returns the tool description
func (t *CoverageTool) Description() string {
	return "Test Coverage - Test coverage analysis (requires coverage)"
}

// OutputFile returns the report file name
func (t *CoverageTool) OutputFile() string {
	return t.Cfg.Output.CoverageOutput
}

// Run executes pytest under coverage and builds the concise report
func (t *CoverageTool) Run(ctx context.Context) (any, error) {
	root := t.Cfg.Project.Root
	testDir, err := t.findTestDir()
	if err != nil {
		return nil, err
	}

	reportDir := t.Cfg.Project.ReportDir
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	util.Info("Running tests with coverage in: %s", testDir)
	res, err := t.RunModule(ctx, root, "coverage", "run", "--source=.", "-m", "pytest", testDir, "-v")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 && strings.Contains(res.Stderr, "No module named pytest") {
		return nil, fmt.Errorf("python module pytest is not installed: %w", ErrUnavailable)
	}

	if strings.Contains(res.Stdout, "collected 0 items") {
		util.Warn("No tests were collected, skipping coverage report")
		report := t.buildReport(nil, model.CoverageTotals{})
		none := 0
		report.TestsFound = &none
		return report, nil
	}

	xmlPath := filepath.Join(reportDir, coverageXMLFile)
	xmlRes, err := t.RunModule(ctx, root, "coverage", "xml", "-o", xmlPath)
	if err != nil {
		return nil, err
	}
	if xmlRes.ExitCode != 0 {
		return nil, fmt.Errorf("coverage xml failed: %s", firstLine(xmlRes.Stderr))
	}

	if t.Cfg.Tools.Coverage.HTMLReport {
		htmlRes, err := t.RunModule(ctx, root, "coverage", "html", "-d", filepath.Join(reportDir, coverageHTMLDir))
		if err != nil || htmlRes.ExitCode != 0 {
			util.Warn("Could not generate HTML coverage report")
		}
	}

	jsonPath := filepath.Join(reportDir, coverageJSONFile)
	if jsonRes, err := t.RunModule(ctx, root, "coverage", "json", "-o", jsonPath); err != nil || jsonRes.ExitCode != 0 {
		util.Warn("Could not generate JSON coverage report")
	}

	files, err := parseCoverageXMLFile(xmlPath)
	if err != nil {
		util.Warn("Could not parse XML coverage file: %v", err)
	}
	totals, err := parseCoverageJSONFile(jsonPath)
	if err != nil {
		util.Warn("Could not parse JSON coverage file: %v", err)
	}

	report := t.buildReport(files, totals)
	util.Info("Test coverage: %.2f%% (grade %s, %d files)",
		report.CoveragePercentage, report.CoverageGrade, report.Summary.TotalFiles)
	return report, nil
}

func (t *CoverageTool) findTestDir() (string, error) {
	root := t.Cfg.Project.Root
	if dir := t.Cfg.Project.TestDir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		return dir, nil
	}

	candidates := t.Cfg.Tools.Coverage.TestDirCandidates
	for _, name := range candidates {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no test directory found in %s (looked for %s)", root, strings.Join(candidates, ", "))
}

func (t *CoverageTool) buildReport(files []model.FileCoverage, totals model.CoverageTotals) *model.CoverageReport {
	return buildCoverageReport(t.Cfg.Project.Name, files, totals, t.now())
}

type coberturaReport struct {
	Packages []struct {
		Classes []struct {
			Filename string `xml:"filename,attr"`
			Lines    []struct {
				Hits string `xml:"hits,attr"`
			} `xml:"lines>line"`
		} `xml:"classes>class"`
	} `xml:"packages>package"`
}

func parseCoverageXMLFile(path string) ([]model.FileCoverage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseCoverageXML(data)
}

// parseCoverageXML reads per-file line coverage from a Cobertura report,
// sorted from least to most covered.
func parseCoverageXML(data []byte) ([]model.FileCoverage, error) {
	var doc coberturaReport
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var files []model.FileCoverage
	for _, pkg := range doc.Packages {
		for _, cls := range pkg.Classes {
			if cls.Filename == "" || len(cls.Lines) == 0 {
				continue
			}
			covered := 0
			for _, l := range cls.Lines {
				if l.Hits != "" && l.Hits != "0" {
					covered++
				}
			}
			total := len(cls.Lines)
			files = append(files, model.FileCoverage{
				Filename:        cls.Filename,
				TotalLines:      total,
				CoveredLines:    covered,
				MissingLines:    total - covered,
				CoveragePercent: round2(float64(covered) / float64(total) * 100),
			})
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CoveragePercent < files[j].CoveragePercent
	})
	return files, nil
}

func parseCoverageJSONFile(path string) (model.CoverageTotals, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.CoverageTotals{}, nil
	}
	if err != nil {
		return model.CoverageTotals{}, err
	}
	return parseCoverageJSON(data)
}

// parseCoverageJSON reads the totals block of coverage.py's JSON report
func parseCoverageJSON(data []byte) (model.CoverageTotals, error) {
	if !gjson.ValidBytes(data) {
		return model.CoverageTotals{}, errors.New("invalid JSON")
	}
	totals := gjson.GetBytes(data, "totals")
	return model.CoverageTotals{
		PercentCovered:     round2(totals.Get("percent_covered").Float()),
		TotalStatements:    int(totals.Get("num_statements").Int()),
		CoveredStatements:  int(totals.Get("covered_lines").Int()),
		MissingStatements:  int(totals.Get("missing_lines").Int()),
		ExcludedStatements: int(totals.Get("excluded_lines").Int()),
		BranchesTotal:      int(totals.Get("num_branches").Int()),
		BranchesCovered:    int(totals.Get("covered_branches").Int()),
		BranchesMissing:    int(totals.Get("missing_branches").Int()),
	}, nil
}

func coverageGrade(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}

func coverageStatus(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent"
	case pct >= 80:
		return "Good"
	case pct >= 70:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func buildCoverageReport(projectName string, files []model.FileCoverage, totals model.CoverageTotals, now time.Time) *model.CoverageReport {
	if projectName == "" {
		projectName = "Unknown"
	}

	var cats model.FilesByCategory
	var poor, fair []model.FileCoverage
	for _, f := range files {
		switch {
		case f.CoveragePercent >= 90:
			cats.Excellent++
		case f.CoveragePercent >= 70:
			cats.Good++
		case f.CoveragePercent >= 50:
			cats.Fair++
			fair = append(fair, f)
		default:
			cats.Poor++
			poor = append(poor, f)
		}
	}

	priorities := []model.CoveragePriority{}
	for _, f := range poor[:min(len(poor), 10)] {
		priorities = append(priorities, model.CoveragePriority{
			Filename:        filepath.Base(f.Filename),
			FullPath:        f.Filename,
			CoveragePercent: f.CoveragePercent,
			MissingLines:    f.MissingLines,
		})
	}

	quickWins := []model.CoveragePriority{}
	for _, f := range fair {
		if len(quickWins) == 5 {
			break
		}
		if f.MissingLines <= 20 {
			quickWins = append(quickWins, model.CoveragePriority{
				Filename:        filepath.Base(f.Filename),
				CoveragePercent: f.CoveragePercent,
				MissingLines:    f.MissingLines,
			})
		}
	}

	recs := coverageRecommendations(totals.PercentCovered, files)

	return &model.CoverageReport{
		ProjectName:        projectName,
		AnalysisDate:       now.Format(time.RFC3339),
		CoveragePercentage: totals.PercentCovered,
		CoverageGrade:      coverageGrade(totals.PercentCovered),
		CoverageStatus:     coverageStatus(totals.PercentCovered),
		Summary: model.CoverageSummary{
			TotalFiles:      len(files),
			FilesByCategory: cats,
			Statements: model.StatementCounts{
				Total:   totals.TotalStatements,
				Covered: totals.CoveredStatements,
				Missing: totals.MissingStatements,
			},
		},
		TopPriorities:   priorities,
		QuickWins:       quickWins,
		Recommendations: recs[:min(len(recs), 3)],
	}
}

func coverageRecommendations(pct float64, files []model.FileCoverage) []string {
	var recs []string
	switch {
	case pct < 50:
		recs = append(recs,
			"CRITICAL: Coverage is below 50%. Implement comprehensive test strategy.",
			"Start with unit tests for core business logic functions.",
			"Aim for at least 70% coverage as initial target.")
	case pct < 70:
		recs = append(recs,
			"Coverage needs improvement. Focus on untested critical paths.",
			"Add integration tests for main user workflows.")
	case pct < 85:
		recs = append(recs,
			"Good coverage! Focus on edge cases and error handling.",
			"Add tests for exception paths and boundary conditions.")
	default:
		recs = append(recs,
			"Excellent coverage! Maintain quality with mutation testing.",
			"Consider property-based testing for complex algorithms.")
	}

	var poorNames []string
	largeUncovered := 0
	for _, f := range files {
		if f.CoveragePercent < 50 {
			poorNames = append(poorNames, filepath.Base(f.Filename))
		}
		if f.TotalLines > 100 && f.CoveragePercent < 70 {
			largeUncovered++
		}
	}
	if len(poorNames) > 0 {
		recs = append(recs,
			fmt.Sprintf("Priority: %d files have <50%% coverage", len(poorNames)),
			"Focus on: "+strings.Join(poorNames[:min(len(poorNames), 3)], ", "))
	}
	if largeUncovered > 0 {
		recs = append(recs,
			fmt.Sprintf("Large files needing attention: %d files >100 lines with <70%% coverage", largeUncovered))
	}
	return recs
}
