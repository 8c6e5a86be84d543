package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

var (
	pylintIssuePattern = regexp.MustCompile(`^([^:]+):(\d+):(\d+):\s*([CRWEF]\d+):\s*(.+?)\s*\(([^)]+)\)`)
	pylintScorePattern = regexp.MustCompile(`Your code has been rated at ([\d.-]+)/10`)
)

// pylint exits with a bit mask of message categories; anything above 31
// means pylint itself failed.
const pylintMaxValidExitCode = 31

// PylintTool runs pylint on every file through a bounded worker pool
type PylintTool struct {
	BaseTool
}

// NewPylintTool creates a new pylint tool
func NewPylintTool(base BaseTool) *PylintTool {
	return &PylintTool{BaseTool: base}
}

// Name returns the tool name
func (t *PylintTool) Name() string {
	return "pylint"
}

// Description returns the tool description
func (t *PylintTool) Description() string {
	return "Pylint - Code quality and style analysis (requires pylint)"
}

// OutputFile returns the report file name
func (t *PylintTool) OutputFile() string {
	return t.Cfg.Output.PylintOutput
}

type pylintFileResult struct {
	path     string
	issues   []model.LintIssue
	score    *float64
	exitCode int
	err      error
}

// Run lints the discovered files in batches
func (t *PylintTool) Run(ctx context.Context) (any, error) {
	files, err := t.PythonFiles(ctx)
	if err != nil {
		return nil, err
	}

	cfg := t.Cfg.Tools.Pylint
	if cfg.FileLimit > 0 && len(files) > cfg.FileLimit {
		util.Warn("Too many files (%d), analyzing first %d; raise tools.pylint.file_limit to analyze more",
			len(files), cfg.FileLimit)
		files = files[:cfg.FileLimit]
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(false),
		ants.WithPanicHandler(func(p any) {
			util.Error("Pylint worker panic recovered: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pylint worker pool: %w", err)
	}
	defer pool.Release()

	totalBatches := (len(files) + batchSize - 1) / batchSize
	util.Info("Running pylint on %d files in %d batches of up to %d (workers: %d)",
		len(files), totalBatches, batchSize, workers)

	bar := newProgressBar("pylint", len(files), t.progressWriter())
	defer func() { _ = bar.Finish() }()

	agg := newPylintAggregate()
	for start, batchNum := 0, 1; start < len(files); start, batchNum = start+batchSize, batchNum+1 {
		end := min(start+batchSize, len(files))
		results := t.lintBatch(ctx, pool, files[start:end], bar)

		failedBefore := len(agg.failed)
		for _, r := range results {
			if errors.Is(r.err, ErrUnavailable) {
				return nil, r.err
			}
			agg.add(r)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		util.Debug("Batch %d/%d complete: %d files, %d failed",
			batchNum, totalBatches, end-start, len(agg.failed)-failedBefore)
	}

	report := agg.report(batchSize)
	util.Info("Pylint complete. Score: %.2f/10 (%.1f%%), issues: %d, failed files: %d",
		report.Score, report.Percentage, report.TotalIssues, len(report.FailedFiles))
	return report, nil
}

func (t *PylintTool) lintBatch(ctx context.Context, pool *ants.Pool, batch []string, bar *progressbar.ProgressBar) []pylintFileResult {
	results := make([]pylintFileResult, len(batch))
	var wg sync.WaitGroup

	for i, path := range batch {
		if err := ctx.Err(); err != nil {
			results[i] = pylintFileResult{path: path, err: err}
			continue
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = t.lintFile(ctx, path)
			_ = bar.Add(1)
		})
		if err != nil {
			wg.Done()
			results[i] = pylintFileResult{path: path, err: err}
		}
	}

	wg.Wait()
	return results
}

func (t *PylintTool) lintFile(ctx context.Context, path string) pylintFileResult {
	cfg := t.Cfg.Tools.Pylint
	args := []string{"--persistent=no"}
	if cfg.MaxLineLength > 0 {
		args = append(args, fmt.Sprintf("--max-line-length=%d", cfg.MaxLineLength))
	}
	if len(cfg.Disable) > 0 {
		args = append(args, "--disable="+strings.Join(cfg.Disable, ","))
	}
	args = append(args, path)

	res, err := t.RunModule(ctx, t.Cfg.Project.Root, "pylint", args...)
	if err != nil {
		return pylintFileResult{path: path, err: err}
	}

	return pylintFileResult{
		path:     path,
		issues:   parsePylintIssues(res.Stdout),
		score:    parsePylintScore(res.Stdout),
		exitCode: res.ExitCode,
	}
}

func (t *PylintTool) progressWriter() io.Writer {
	if !t.Cfg.Tools.ShowProgress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return io.Discard
	}
	return os.Stderr
}

func newProgressBar(description string, total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// parsePylintIssues extracts messages from pylint's text output
func parsePylintIssues(output string) []model.LintIssue {
	var issues []model.LintIssue
	for _, line := range strings.Split(output, "\n") {
		m := pylintIssuePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		issues = append(issues, model.LintIssue{
			Type:      model.IssueTypeFromCode(m[4]),
			Module:    m[1],
			Line:      lineNo,
			Column:    col,
			Path:      m[1],
			Symbol:    m[6],
			Message:   strings.TrimSpace(m[5]),
			MessageID: m[4],
		})
	}
	return issues
}

// parsePylintScore returns the "rated at" score when it lies within 0..10
func parsePylintScore(output string) *float64 {
	m := pylintScorePattern.FindStringSubmatch(output)
	if m == nil {
		return nil
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		util.Debug("Could not convert pylint score %q", m[1])
		return nil
	}
	if score < 0 || score > 10 {
		util.Debug("Ignoring out of range pylint score %v", score)
		return nil
	}
	return &score
}

type pylintAggregate struct {
	issues     []model.LintIssue
	scores     []float64
	failed     []string
	successful int
}

func newPylintAggregate() *pylintAggregate {
	return &pylintAggregate{
		issues: []model.LintIssue{},
		scores: []float64{},
		failed: []string{},
	}
}

func (a *pylintAggregate) add(r pylintFileResult) {
	if r.err != nil {
		util.Warn("Failed to analyze %s: %v", r.path, r.err)
		a.failed = append(a.failed, r.path)
		return
	}
	if r.exitCode > pylintMaxValidExitCode {
		util.Warn("Failed to analyze %s: exit code %d", r.path, r.exitCode)
		a.failed = append(a.failed, r.path)
		return
	}
	a.issues = append(a.issues, r.issues...)
	if r.score != nil {
		a.scores = append(a.scores, *r.score)
	}
	a.successful++
}

func (a *pylintAggregate) report(batchSize int) *model.PylintReport {
	var score float64
	if len(a.scores) > 0 {
		var sum float64
		for _, s := range a.scores {
			sum += s
		}
		score = round2(sum / float64(len(a.scores)))
	} else {
		util.Warn("No valid pylint scores found, estimating score from issues")
		score = estimatePylintScore(a.issues, a.successful)
	}

	counts := make(map[model.IssueType]int, len(model.IssueTypes))
	for _, it := range model.IssueTypes {
		counts[it] = 0
	}
	for _, issue := range a.issues {
		if _, ok := counts[issue.Type]; ok {
			counts[issue.Type]++
		}
	}

	return &model.PylintReport{
		Issues:           a.issues,
		IssueCounts:      counts,
		Score:            score,
		Percentage:       round1(score * 10),
		TotalIssues:      len(a.issues),
		FilesAnalyzed:    a.successful,
		FailedFiles:      a.failed,
		IndividualScores: a.scores,
		AnalysisMethod:   "batch_processing_with_pylint_scores",
		BatchSize:        batchSize,
	}
}

// estimatePylintScore approximates a score when pylint printed none: errors
// weigh 2, warnings 1, conventions and refactors 0.5 per analyzed file.
func estimatePylintScore(issues []model.LintIssue, files int) float64 {
	if files == 0 {
		return 10.0
	}

	var penalty float64
	for _, issue := range issues {
		switch issue.Type {
		case model.IssueError:
			penalty += 2
		case model.IssueWarning:
			penalty += 1
		case model.IssueConvention, model.IssueRefactor:
			penalty += 0.5
		}
	}

	return round2(max(0.0, 10.0-(penalty/float64(files))*0.5))
}
