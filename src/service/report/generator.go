package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cq-suite/src/config"
	"cq-suite/src/model"
	"cq-suite/src/util"
)

// Run bundles everything a summary format can render
type Run struct {
	Summary *model.AnalysisSummary
	Numeric *model.NumericSummary
	Results []model.ToolResult
}

// Generator renders run summaries in the extra output formats
type Generator struct {
	agent config.AgentConfig
}

// NewGenerator creates a new summary generator
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{agent: cfg.Agent}
}

// Generate renders run in the specified format
func (g *Generator) Generate(run *Run, format string) (string, error) {
	util.Debug("Generating summary in %s format (%d tools)", format, len(run.Results))
	switch format {
	case "markdown", "md":
		return g.generateMarkdown(run), nil
	case "sarif":
		return g.generateSARIF(run)
	default:
		util.Warn("Unsupported summary format requested: %s", format)
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// FileName returns the summary file name for format, derived from the JSON summary name
func FileName(summaryOutput, format string) string {
	base := strings.TrimSuffix(summaryOutput, filepath.Ext(summaryOutput))
	if base == "" {
		base = "analysis_summary"
	}
	switch format {
	case "markdown", "md":
		return base + ".md"
	default:
		return base + "." + format
	}
}

func (g *Generator) generateMarkdown(run *Run) string {
	var sb strings.Builder
	s := run.Summary

	sb.WriteString("# Code Quality Analysis\n\n")
	sb.WriteString(fmt.Sprintf("**Project:** %s\n", s.ProjectName))
	sb.WriteString(fmt.Sprintf("**Root:** `%s`\n", s.ProjectRoot))
	sb.WriteString(fmt.Sprintf("**Run:** %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("**Started:** %s\n\n", s.StartedAt.Format("2006-01-02 15:04:05 UTC")))

	sb.WriteString("## Tools\n\n")
	sb.WriteString(fmt.Sprintf("%d/%d tools succeeded (%.0f%%), %d files analyzed.\n\n",
		len(s.SuccessfulTools), s.TotalTools, s.SuccessRate*100, s.FilesAnalyzed))
	sb.WriteString("| Tool | Status | Duration (s) | Report |\n")
	sb.WriteString("|------|--------|--------------|--------|\n")
	for _, r := range run.Results {
		detail := r.ReportPath
		if r.Error != "" {
			detail = r.Error
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %s |\n", r.Name, statusLabel(r.Status), r.DurationS, escapeCell(detail)))
	}
	sb.WriteString("\n")

	if n := run.Numeric; n != nil && (len(n.OverallScores) > 0 || len(n.Metrics) > 0) {
		sb.WriteString("## Scores\n\n")
		writeTable(&sb, "Score", n.OverallScores)
		sb.WriteString("## Metrics\n\n")
		writeTable(&sb, "Metric", n.Metrics)
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, title string, values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString(fmt.Sprintf("| %s | Value |\n", title))
	sb.WriteString("|------|-------|\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("| %s | %v |\n", k, values[k]))
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func statusLabel(s model.ToolStatus) string {
	switch s {
	case model.ToolSucceeded:
		return "[OK]"
	case model.ToolUnavailable:
		return "[UNAVAILABLE]"
	default:
		return "[FAILED]"
	}
}

func (g *Generator) generateSARIF(run *Run) (string, error) {
	var pylint *model.PylintReport
	var unused *model.UnusedReport
	for _, r := range run.Results {
		switch rep := r.Report.(type) {
		case *model.PylintReport:
			pylint = rep
		case *model.UnusedReport:
			unused = rep
		}
	}

	var runs []map[string]any
	if pylint != nil {
		runs = append(runs, sarifRun("pylint", pylintRules(pylint.Issues), pylintResults(pylint.Issues)))
	}
	if unused != nil {
		runs = append(runs, sarifRun("vulture", unusedRules(unused.UnusedItems), unusedResults(unused.UnusedItems)))
	}
	if runs == nil {
		runs = []map[string]any{sarifRun(g.agent.Name, []map[string]any{}, []map[string]any{})}
	}

	sarif := map[string]any{
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"version": "2.1.0",
		"runs":    runs,
	}

	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sarifRun(driver string, rules, results []map[string]any) map[string]any {
	return map[string]any{
		"tool": map[string]any{
			"driver": map[string]any{
				"name":  driver,
				"rules": rules,
			},
		},
		"results": results,
	}
}

func pylintRules(issues []model.LintIssue) []map[string]any {
	seen := make(map[string]bool)
	rules := []map[string]any{}

	for _, issue := range issues {
		if seen[issue.MessageID] {
			continue
		}
		seen[issue.MessageID] = true

		rules = append(rules, map[string]any{
			"id":   issue.MessageID,
			"name": issue.Symbol,
			"shortDescription": map[string]any{
				"text": issue.Symbol,
			},
			"defaultConfiguration": map[string]any{
				"level": sarifLevel(issue.Type),
			},
		})
	}
	return rules
}

func pylintResults(issues []model.LintIssue) []map[string]any {
	results := []map[string]any{}
	for _, issue := range issues {
		results = append(results, map[string]any{
			"ruleId":    issue.MessageID,
			"level":     sarifLevel(issue.Type),
			"message":   map[string]any{"text": issue.Message},
			"locations": sarifLocation(issue.Path, issue.Line, issue.Column+1),
		})
	}
	return results
}

const unusedRuleID = "unused-code"

func unusedRules(items []model.UnusedItem) []map[string]any {
	if len(items) == 0 {
		return []map[string]any{}
	}
	return []map[string]any{{
		"id":   unusedRuleID,
		"name": "unused-code",
		"shortDescription": map[string]any{
			"text": "Code that is never used",
		},
		"defaultConfiguration": map[string]any{
			"level": "warning",
		},
	}}
}

func unusedResults(items []model.UnusedItem) []map[string]any {
	results := []map[string]any{}
	for _, item := range items {
		results = append(results, map[string]any{
			"ruleId":    unusedRuleID,
			"level":     "warning",
			"message":   map[string]any{"text": fmt.Sprintf("%s (%s)", item.Message, item.Symbol)},
			"locations": sarifLocation(item.File, item.Line, 0),
		})
	}
	return results
}

func sarifLocation(uri string, line, column int) []map[string]any {
	region := map[string]any{"startLine": max(line, 1)}
	if column > 0 {
		region["startColumn"] = column
	}
	return []map[string]any{
		{
			"physicalLocation": map[string]any{
				"artifactLocation": map[string]any{"uri": filepath.ToSlash(uri)},
				"region":           region,
			},
		},
	}
}

func sarifLevel(t model.IssueType) string {
	switch t {
	case model.IssueError, model.IssueFatal:
		return "error"
	case model.IssueWarning:
		return "warning"
	default:
		return "note"
	}
}
