package tool

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cq-suite/src/model"
	"cq-suite/src/util"
)

var vulturePattern = regexp.MustCompile(`^(.+?):(\d+): (.+) \((.+)\)`)

// vulture exits with 2 on invalid command line arguments
const vultureUsageExitCode = 2

// vultureMaxArgBytes bounds the file arguments of one vulture run, well below
// the smallest common OS command line limit
const vultureMaxArgBytes = 30000

// UnusedTool finds dead code with vulture
type UnusedTool struct {
	BaseTool
	maxArgBytes int
}

// NewUnusedTool creates a new unused code tool
func NewUnusedTool(base BaseTool) *UnusedTool {
	return &UnusedTool{BaseTool: base, maxArgBytes: vultureMaxArgBytes}
}

// Name returns the tool name
func (t *UnusedTool) Name() string {
	return "unused"
}

// Description returns the tool description
func (t *UnusedTool) Description() string {
	return "Unused Code - Dead code detection (requires vulture)"
}

// OutputFile returns the report file name
func (t *UnusedTool) OutputFile() string {
	return t.Cfg.Output.UnusedOutput
}

// Run executes vulture over every discovered file. Files go into a single
// run unless the command line would grow too long, in which case they are
// split into consecutive chunks.
func (t *UnusedTool) Run(ctx context.Context) (any, error) {
	files, err := t.PythonFiles(ctx)
	if err != nil {
		return nil, err
	}

	var flags []string
	if c := t.Cfg.Tools.Vulture.MinConfidence; c > 0 {
		flags = append(flags, "--min-confidence", strconv.Itoa(c))
	}

	chunks := chunkByArgBytes(files, t.maxArgBytes)
	if len(chunks) > 1 {
		util.Warn("Splitting %d files into %d vulture runs; usages across runs are not seen", len(files), len(chunks))
	}

	util.Info("Running vulture on %d files", len(files))
	items := []model.UnusedItem{}
	for _, chunk := range chunks {
		args := append(append([]string(nil), flags...), chunk...)
		res, err := t.RunModule(ctx, t.Cfg.Project.Root, "vulture", args...)
		if err != nil {
			return nil, err
		}
		util.Debug("Vulture exit code %d, stdout %d bytes", res.ExitCode, len(res.Stdout))
		if res.ExitCode == vultureUsageExitCode {
			return nil, fmt.Errorf("vulture rejected its arguments: %s", firstLine(res.Stderr))
		}
		items = append(items, parseVultureOutput(res.Stdout)...)
	}

	report := &model.UnusedReport{
		TotalDefinedFiles: len(files),
		UnusedItemsCount:  len(items),
		UnusedItems:       limitItems(items, t.Cfg.Tools.Vulture.MaxItems),
	}

	util.Info("Vulture complete. Found %d unused items", len(items))
	return report, nil
}

// chunkByArgBytes splits args into runs whose joined length stays within
// limit. An argument longer than limit gets a chunk of its own.
func chunkByArgBytes(args []string, limit int) [][]string {
	if limit <= 0 {
		return [][]string{args}
	}
	var chunks [][]string
	var current []string
	size := 0
	for _, a := range args {
		n := len(a) + 1
		if len(current) > 0 && size+n > limit {
			chunks = append(chunks, current)
			current, size = nil, 0
		}
		current = append(current, a)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// parseVultureOutput extracts "file:line: message (confidence)" lines
func parseVultureOutput(output string) []model.UnusedItem {
	items := []model.UnusedItem{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := vulturePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		items = append(items, model.UnusedItem{
			File:    m[1],
			Line:    lineNo,
			Message: m[3],
			Symbol:  m[4],
		})
	}
	return items
}

func limitItems(items []model.UnusedItem, n int) []model.UnusedItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
