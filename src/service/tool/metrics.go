package tool

import (
	"context"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

// CodeMetricsTool counts lines, functions and classes
type CodeMetricsTool struct {
	BaseTool
}

// NewCodeMetricsTool creates a new code metrics tool
func NewCodeMetricsTool(base BaseTool) *CodeMetricsTool {
	return &CodeMetricsTool{BaseTool: base}
}

// Name returns the tool name
func (t *CodeMetricsTool) Name() string {
	return "code_metrics"
}

// Description returns the tool description
func (t *CodeMetricsTool) Description() string {
	return "Code Metrics - Lines, functions, classes analysis"
}

// OutputFile returns the report file name
func (t *CodeMetricsTool) OutputFile() string {
	return t.Cfg.Output.MetricsOutput
}

// Run computes metrics for every discovered file
func (t *CodeMetricsTool) Run(ctx context.Context) (any, error) {
	files, err := t.PythonFiles(ctx)
	if err != nil {
		return nil, err
	}

	parser, err := newPyParser()
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	util.Info("Analyzing code metrics for %d files", len(files))

	details := make([]model.FileMetrics, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		util.Debug("Processing: %s", path)
		details = append(details, model.FileMetrics{
			File:        path,
			LineMetrics: countLines(path),
			ASTMetrics:  parser.astMetrics(path),
		})
	}

	report := summarizeMetrics(details, t.Cfg.Tools.CodeMetrics.MaxFileDetails)
	s := report.Summary
	util.Info("Code metrics: %d files, %d code lines, %d functions (+%d async), %d classes, %d methods",
		s.TotalFiles, s.TotalCodeLines, s.TotalFunctions, s.TotalAsyncFunctions, s.TotalClasses, s.TotalMethods)
	return report, nil
}

// countLines classifies lines as empty, comment (starting with #) or code.
// Unreadable or non UTF-8 files count as empty.
func countLines(path string) model.LineMetrics {
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return model.LineMetrics{}
	}
	return countSourceLines(string(data))
}

func countSourceLines(src string) model.LineMetrics {
	var m model.LineMetrics
	if src == "" {
		return m
	}

	lines := strings.SplitAfter(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	m.TotalLines = len(lines)
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			m.EmptyLines++
		case strings.HasPrefix(stripped, "#"):
			m.CommentLines++
		default:
			m.CodeLines++
		}
	}
	return m
}

// astMetrics counts structural elements. Files that fail to parse count zero.
func (p *pyParser) astMetrics(path string) model.ASTMetrics {
	f, err := p.parseFile(path)
	if err != nil {
		util.Debug("Skipping AST metrics for %s: %v", path, err)
		return model.ASTMetrics{}
	}
	defer f.Close()
	return astCounts(f)
}

func astCounts(f *pyFile) model.ASTMetrics {
	var m model.ASTMetrics
	walkScoped(f.root(), func(n *sitter.Node, inClass bool) {
		switch {
		case n.Kind() == "class_definition":
			m.Classes++
		case isAsyncFunction(n):
			m.AsyncFunctions++
			if inClass {
				m.Methods++
			}
		case isFunction(n):
			m.Functions++
			if inClass {
				m.Methods++
			}
		}
	})
	return m
}

func summarizeMetrics(details []model.FileMetrics, maxDetails int) *model.CodeMetricsReport {
	var s model.CodeMetricsSummary
	s.TotalFiles = len(details)

	for _, d := range details {
		s.TotalLines += d.LineMetrics.TotalLines
		s.TotalCodeLines += d.LineMetrics.CodeLines
		s.TotalCommentLines += d.LineMetrics.CommentLines
		s.TotalEmptyLines += d.LineMetrics.EmptyLines
		s.TotalFunctions += d.ASTMetrics.Functions
		s.TotalAsyncFunctions += d.ASTMetrics.AsyncFunctions
		s.TotalClasses += d.ASTMetrics.Classes
		s.TotalMethods += d.ASTMetrics.Methods

		// strict comparison keeps the first file on ties
		if d.LineMetrics.TotalLines > s.BiggestByTotalLines.Lines {
			s.BiggestByTotalLines = model.BiggestFile{File: d.File, Lines: d.LineMetrics.TotalLines}
		}
		if d.LineMetrics.CodeLines > s.BiggestByCodeLines.Lines {
			s.BiggestByCodeLines = model.BiggestFile{File: d.File, Lines: d.LineMetrics.CodeLines}
		}
	}

	if s.TotalFiles > 0 {
		n := float64(s.TotalFiles)
		s.AvgLinesPerFile = round2(float64(s.TotalLines) / n)
		s.AvgFunctionsPerFile = round2(float64(s.TotalFunctions) / n)
		s.AvgClassesPerFile = round2(float64(s.TotalClasses) / n)
	}

	// zero keeps every file
	if maxDetails > 0 && len(details) > maxDetails {
		details = details[:maxDetails]
	}
	return &model.CodeMetricsReport{Summary: s, FileDetails: details}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
