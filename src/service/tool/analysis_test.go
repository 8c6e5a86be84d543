package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cq-suite/src/model"
)

const sampleModule = `import os

# module comment

class Shop:
    """A shop."""

    def open(self):
        """Open it."""
        def helper():
            pass
        return helper

    async def close(self):
        pass


def main():
    # leading comment
    """Entry point."""
    return Shop()


async def fetch():
    return f"x"


@decorator
def decorated():
    'single quoted doc'


def empty_doc():
    """   """


def fdoc():
    f"""not a docstring"""
`

func parseSource(t *testing.T, src string) *pyFile {
	t.Helper()
	p, err := newPyParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)

	f, err := p.parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestCountSourceLines(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want model.LineMetrics
	}{
		{"empty", "", model.LineMetrics{}},
		{"mixed", "a = 1\n\n# c\n   \nb = 2", model.LineMetrics{TotalLines: 5, CodeLines: 2, CommentLines: 1, EmptyLines: 2}},
		{"trailing newline", "x = 1\n", model.LineMetrics{TotalLines: 1, CodeLines: 1}},
		{"indented comment", "def f():\n    # note\n    pass\n", model.LineMetrics{TotalLines: 3, CodeLines: 2, CommentLines: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countSourceLines(tt.src))
		})
	}
}

func TestASTCounts(t *testing.T) {
	f := parseSource(t, sampleModule)
	assert.Equal(t, model.ASTMetrics{
		Functions:      6,
		AsyncFunctions: 2,
		Classes:        1,
		Methods:        3,
	}, astCounts(f))
}

func TestParse_SyntaxError(t *testing.T) {
	p, err := newPyParser()
	require.NoError(t, err)
	defer p.Close()

	_, err = p.parse([]byte("def broken(:\n    pass\n"))
	assert.ErrorIs(t, err, errSyntax)

	_, err = p.parse([]byte{0xff, 0xfe, 'x'})
	assert.ErrorIs(t, err, errNotUTF8)
}

func TestCheckDocstrings(t *testing.T) {
	f := parseSource(t, sampleModule)
	report := &model.DocstringReport{}
	checkDocstrings(f, "shop.py", nil, report)
	finishDocstringReport(report)

	assert.Equal(t, 8, report.TotalFunctions)
	assert.Equal(t, 3, report.DocumentedFunctions)
	assert.Equal(t, 5, report.UndocumentedFunctions)
	assert.Equal(t, 37.5, report.CoveragePercent)

	var names []string
	for _, d := range report.UndocumentedDetails {
		names = append(names, d.Function)
		assert.Equal(t, "shop.py", d.File)
	}
	assert.ElementsMatch(t, []string{"helper", "close", "fetch", "empty_doc", "fdoc"}, names)
}

func TestFinishDocstringReport_NoFunctions(t *testing.T) {
	report := &model.DocstringReport{}
	finishDocstringReport(report)
	assert.Equal(t, 100.0, report.CoveragePercent)
}

func TestSummarizeMetrics(t *testing.T) {
	details := []model.FileMetrics{
		{File: "a.py", LineMetrics: model.LineMetrics{TotalLines: 10, CodeLines: 8}, ASTMetrics: model.ASTMetrics{Functions: 2, Classes: 1}},
		{File: "b.py", LineMetrics: model.LineMetrics{TotalLines: 20, CodeLines: 5}, ASTMetrics: model.ASTMetrics{Functions: 1}},
		{File: "c.py", LineMetrics: model.LineMetrics{TotalLines: 20, CodeLines: 8}},
	}

	report := summarizeMetrics(details, 2)
	s := report.Summary
	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, 50, s.TotalLines)
	assert.Equal(t, 16.67, s.AvgLinesPerFile)
	assert.Equal(t, 1.0, s.AvgFunctionsPerFile)
	assert.Equal(t, 0.33, s.AvgClassesPerFile)
	assert.Equal(t, model.BiggestFile{File: "b.py", Lines: 20}, s.BiggestByTotalLines)
	assert.Equal(t, model.BiggestFile{File: "a.py", Lines: 8}, s.BiggestByCodeLines)
	assert.Len(t, report.FileDetails, 2)
}

func TestCodeMetricsTool_Run(t *testing.T) {
	base, root := newTestProject(t, &fakeExecutor{}, map[string]string{
		"shop.py":       sampleModule,
		"broken.py":     "def broken(:\n",
		"pkg/README.md": "not python",
	})

	report, err := NewCodeMetricsTool(base).Run(context.Background())
	require.NoError(t, err)

	m := report.(*model.CodeMetricsReport)
	assert.Equal(t, 2, m.Summary.TotalFiles)
	assert.Equal(t, 6, m.Summary.TotalFunctions)
	assert.Equal(t, 1, m.Summary.TotalClasses)
	assert.Equal(t, root+"/shop.py", m.Summary.BiggestByTotalLines.File)
	require.Len(t, m.FileDetails, 2)
	assert.Equal(t, model.ASTMetrics{}, m.FileDetails[0].ASTMetrics)
	assert.Equal(t, 1, m.FileDetails[0].LineMetrics.CodeLines)
}

func TestDocstringTool_Run(t *testing.T) {
	base, _ := newTestProject(t, &fakeExecutor{}, map[string]string{
		"shop.py":   sampleModule,
		"broken.py": "def broken(:\n",
	})
	base.Cfg.Tools.Docstrings.FunctionPatterns = []string{"^_", "^f"}

	report, err := NewDocstringTool(base).Run(context.Background())
	require.NoError(t, err)

	d := report.(*model.DocstringReport)
	// fetch and fdoc are ignored by pattern
	assert.Equal(t, 6, d.TotalFunctions)
	assert.Equal(t, 3, d.DocumentedFunctions)
	assert.Equal(t, 50.0, d.CoveragePercent)
	assert.Len(t, d.SkippedFiles, 1)
}
