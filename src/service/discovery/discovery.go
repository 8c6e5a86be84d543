// Package discovery finds the source files every analysis tool consumes.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cq-suite/src/config"
	"cq-suite/src/util"
)

// ErrNoFiles is returned by consumers when discovery produced an empty set
var ErrNoFiles = errors.New("no source files found to analyze")

// Options controls a discovery run
type Options struct {
	Root            string
	IncludeDirs     []string
	ExcludePatterns []string
	Extensions      []string
	FollowSymlinks  bool
}

// OptionsFromConfig builds discovery options from the active configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:            cfg.Project.Root,
		IncludeDirs:     cfg.Project.IncludeDirs,
		ExcludePatterns: cfg.Project.ExcludePatterns,
		Extensions:      cfg.Discovery.Extensions,
		FollowSymlinks:  cfg.Discovery.FollowSymlinks,
	}
}

// Result is the outcome of a discovery run
type Result struct {
	// Files holds absolute, cleaned, sorted and deduplicated paths
	Files []string
	// PerInclude counts files first reached through each include entry
	PerInclude map[string]int
	// Excluded counts files and directories removed by exclusion patterns
	Excluded int
	// Missing lists include entries that do not exist
	Missing []string
}

type candidate struct {
	path string // reported path
	real string // resolved target used for dedup
}

// Discover walks every include directory and returns the filtered file set.
// With no include directories the root itself is walked.
func Discover(ctx context.Context, opts Options) (*Result, error) {
	root, err := resolveDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	includes := opts.IncludeDirs
	if len(includes) == 0 {
		includes = []string{root}
	}

	matcher := util.NewExclusionMatcher(opts.ExcludePatterns)
	for _, p := range matcher.Invalid() {
		util.Warn("Ignoring invalid exclude pattern: %q", p)
	}

	w := &walker{
		root:       root,
		exts:       normalizeExtensions(opts.Extensions),
		follow:     opts.FollowSymlinks,
		matcher:    matcher,
		result:     &Result{PerInclude: make(map[string]int)},
		candidates: make(map[string]candidate),
	}

	for _, inc := range includes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := w.walkInclude(ctx, inc); err != nil {
			return nil, err
		}
	}

	w.result.Files = w.sortedFiles()
	util.Debug("Discovery found %d files (%d excluded entries)", len(w.result.Files), w.result.Excluded)
	return w.result, nil
}

type walker struct {
	root       string
	exts       []string
	follow     bool
	matcher    *util.ExclusionMatcher
	result     *Result
	candidates map[string]candidate // keyed by real path
	visited    map[string]bool      // real directories already walked in this include
}

func (w *walker) walkInclude(ctx context.Context, inc string) error {
	abs := inc
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.root, abs)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		util.Warn("Include path does not exist, skipping: %s", abs)
		w.result.Missing = append(w.result.Missing, inc)
		return nil
	}

	// Paths inside the project are matched relative to the project root so
	// patterns like "src/legacy" behave the same for every include.
	base := w.root
	rel, ok := relWithin(w.root, abs)
	if !ok {
		base = abs
		rel = ""
	}
	matcher := w.matcher.ForRoot(rel)

	if !info.IsDir() {
		if w.accepts(abs) {
			w.add(inc, abs)
		}
		return nil
	}

	util.Info("Scanning: %s", abs)
	w.visited = make(map[string]bool)
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		w.visited[real] = true
	}
	return w.walkDir(ctx, inc, abs, base, matcher)
}

func (w *walker) walkDir(ctx context.Context, inc, dir, base string, matcher *util.ExclusionMatcher) error {
	// The trailing separator makes WalkDir resolve a symlinked root.
	dir = strings.TrimRight(dir, string(filepath.Separator)) + string(filepath.Separator)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				util.Warn("Cannot read %s: %v", path, err)
				return nil
			}
			util.Warn("Skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, _ := filepath.Rel(base, path)

		if d.Type()&fs.ModeSymlink != 0 {
			return w.handleSymlink(ctx, inc, path, rel, base, matcher)
		}

		if d.IsDir() {
			if matcher.Excluded(rel, true) {
				w.result.Excluded++
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !w.accepts(path) {
			return nil
		}
		if matcher.Excluded(rel, false) {
			w.result.Excluded++
			return nil
		}
		w.add(inc, path)
		return nil
	})
}

func (w *walker) handleSymlink(ctx context.Context, inc, path, rel, base string, matcher *util.ExclusionMatcher) error {
	info, err := os.Stat(path)
	if err != nil {
		util.Debug("Skipping broken symlink: %s", path)
		return nil
	}

	if info.IsDir() {
		if matcher.Excluded(rel, true) {
			w.result.Excluded++
			return nil
		}
		if !w.follow {
			util.Debug("Not following symlinked directory: %s", path)
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil || w.visited[real] {
			util.Debug("Skipping symlink cycle: %s", path)
			return nil
		}
		w.visited[real] = true
		// WalkDir does not descend symlinks; walk the link path so reported
		// paths stay under the include.
		return w.walkDir(ctx, inc, path, base, matcher)
	}

	if !info.Mode().IsRegular() || !w.accepts(path) {
		return nil
	}
	if matcher.Excluded(rel, false) {
		w.result.Excluded++
		return nil
	}
	w.add(inc, path)
	return nil
}

func (w *walker) accepts(path string) bool {
	name := filepath.Base(path)
	for _, ext := range w.exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (w *walker) add(inc, path string) {
	path = filepath.Clean(path)
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = path
	}

	existing, seen := w.candidates[real]
	if !seen {
		w.result.PerInclude[inc]++
		w.candidates[real] = candidate{path: path, real: real}
		return
	}
	if path < existing.path {
		w.candidates[real] = candidate{path: path, real: real}
	}
}

func (w *walker) sortedFiles() []string {
	files := make([]string, 0, len(w.candidates))
	for _, c := range w.candidates {
		files = append(files, c.path)
	}
	sort.Strings(files)
	return files
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// relWithin returns target relative to base when target lies inside base
func relWithin(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return []string{".py"}
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
