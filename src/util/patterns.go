package util

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type patternKind int

const (
	// kindName matches a path component exactly
	kindName patternKind = iota
	// kindGlob matches a path component with glob syntax
	kindGlob
	// kindPath matches the whole relative path (or an ancestor of it)
	kindPath
)

// venvNames also match "<name>_suffix" and "prefix_<name>" components
var venvNames = map[string]bool{
	"venv": true, ".venv": true, "env": true, ".env": true,
	"virtualenv": true, ".virtualenv": true,
}

type exclusionPattern struct {
	raw     string
	pattern string
	kind    patternKind
	negate  bool
	dirOnly bool
}

// ExclusionMatcher matches project-relative paths against exclusion patterns.
//
// Patterns come in three forms: plain names ("build"), globs without a
// separator ("*.egg-info") and path globs ("src/**/migrations"). A path is
// excluded when the path itself or any of its ancestors matches. Patterns are
// evaluated in order and the last match wins; a leading "!" re-includes.
type ExclusionMatcher struct {
	patterns []exclusionPattern
	invalid  []string
	// exempt holds the components of an explicitly included root; matches on
	// that root or its ancestors are ignored
	exempt []string
}

// NewExclusionMatcher compiles patterns. Empty and malformed patterns are
// skipped and reported by Invalid.
func NewExclusionMatcher(patterns []string) *ExclusionMatcher {
	m := &ExclusionMatcher{}
	for _, raw := range patterns {
		p, ok := compilePattern(raw)
		if !ok {
			if strings.TrimSpace(raw) != "" {
				m.invalid = append(m.invalid, raw)
			}
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

func compilePattern(raw string) (exclusionPattern, bool) {
	p := exclusionPattern{raw: raw}
	s := strings.TrimSpace(filepath.ToSlash(raw))

	if strings.HasPrefix(s, "!") {
		p.negate = true
		s = s[1:]
	}
	if strings.HasSuffix(s, "/") {
		p.dirOnly = true
		s = strings.TrimRight(s, "/")
	}
	anchored := strings.HasPrefix(s, "/")
	s = strings.TrimLeft(s, "/")
	if s == "" || s == "." {
		return p, false
	}
	if !doublestar.ValidatePattern(s) {
		return p, false
	}

	p.pattern = s
	switch {
	case anchored || strings.Contains(s, "/"):
		p.kind = kindPath
	case strings.ContainsAny(s, "*?[{"):
		p.kind = kindGlob
	default:
		p.kind = kindName
	}
	return p, true
}

// Invalid returns the patterns that could not be compiled
func (m *ExclusionMatcher) Invalid() []string {
	return m.invalid
}

// Len returns the number of active patterns
func (m *ExclusionMatcher) Len() int {
	return len(m.patterns)
}

// Excluded reports whether relPath should be skipped. relPath is relative to
// the walk root and uses either separator.
func (m *ExclusionMatcher) Excluded(relPath string, isDir bool) bool {
	rel := cleanRel(relPath)
	if rel == "" {
		return false
	}
	parts := strings.Split(rel, "/")
	skip := m.exemptDepth(parts)

	excluded := false
	for i := range m.patterns {
		if m.patterns[i].matches(parts, isDir, skip) {
			excluded = !m.patterns[i].negate
		}
	}
	return excluded
}

// ForRoot returns a matcher for walking an explicitly included directory at
// rootRel. Every pattern stays active, but a match on rootRel itself or on one
// of its ancestors is ignored, so the include is honoured while everything
// beneath it is still filtered.
func (m *ExclusionMatcher) ForRoot(rootRel string) *ExclusionMatcher {
	rel := cleanRel(rootRel)
	if rel == "" {
		return m
	}
	return &ExclusionMatcher{
		patterns: m.patterns,
		invalid:  m.invalid,
		exempt:   strings.Split(rel, "/"),
	}
}

// exemptDepth counts the leading components of parts that spell out the
// exempt root or one of its ancestors
func (m *ExclusionMatcher) exemptDepth(parts []string) int {
	n := 0
	for n < len(m.exempt) && n < len(parts) && parts[n] == m.exempt[n] {
		n++
	}
	return n
}

// matches checks the path and all of its ancestors, ignoring the first skip
// prefixes
func (p *exclusionPattern) matches(parts []string, isDir bool, skip int) bool {
	for i := skip; i < len(parts); i++ {
		last := i == len(parts)-1
		if last && p.dirOnly && !isDir {
			continue
		}
		if p.kind == kindPath {
			if ok, _ := doublestar.Match(p.pattern, strings.Join(parts[:i+1], "/")); ok {
				return true
			}
		} else if p.matchComponent(parts[i]) {
			return true
		}
	}
	return false
}

func (p *exclusionPattern) matchComponent(name string) bool {
	if p.kind == kindGlob {
		ok, _ := doublestar.Match(p.pattern, name)
		return ok
	}
	if name == p.pattern {
		return true
	}
	if venvNames[p.pattern] {
		return strings.HasPrefix(name, p.pattern+"_") || strings.HasSuffix(name, "_"+p.pattern)
	}
	return false
}

func cleanRel(relPath string) string {
	rel := path.Clean(filepath.ToSlash(relPath))
	rel = strings.TrimPrefix(rel, "./")
	if rel == "." || rel == "/" {
		return ""
	}
	return strings.TrimPrefix(rel, "/")
}

// NamePatterns compiles regular expressions, skipping invalid ones
func NamePatterns(patterns []string) []*regexp.Regexp {
	var compiled []*regexp.Regexp
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}
	return compiled
}

// MatchesAny reports whether name matches one of the expressions
func MatchesAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
