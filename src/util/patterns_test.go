package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionMatcher_Excluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		want     bool
	}{
		{"name matches component", []string{"build"}, "pkg/build/x.py", false, true},
		{"name is not a substring", []string{"build"}, "pkg/rebuild/x.py", false, false},
		{"venv suffix variant", []string{"venv"}, "venv_old", true, true},
		{"venv prefix variant", []string{"venv"}, "py39_venv/lib/a.py", false, true},
		{"venv inside word", []string{"venv"}, "myvenv", true, false},
		{"non venv name has no variants", []string{"build"}, "build_tools", true, false},
		{"file glob", []string{"*.pyc"}, "pkg/mod.pyc", false, true},
		{"dir glob", []string{"*.egg-info"}, "shop.egg-info/PKG-INFO", false, true},
		{"path pattern", []string{"src/legacy"}, "src/legacy/old.py", false, true},
		{"path pattern elsewhere", []string{"src/legacy"}, "lib/src/legacy/old.py", false, false},
		{"doublestar path", []string{"**/migrations/*.py"}, "app/db/migrations/0001.py", false, true},
		{"anchored", []string{"/tests"}, "pkg/tests/a.py", false, false},
		{"anchored at root", []string{"/tests"}, "tests/a.py", false, true},
		{"dir only skips files", []string{"logs/"}, "logs", false, false},
		{"dir only matches dir", []string{"logs/"}, "logs", true, true},
		{"dir only matches ancestor", []string{"logs/"}, "logs/a.py", false, true},
		{"negation last wins", []string{"test_*.py", "!test_keep.py"}, "test_keep.py", false, false},
		{"later exclusion wins", []string{"!a.py", "*.py"}, "a.py", false, true},
		{"empty path", []string{"*"}, ".", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewExclusionMatcher(tt.patterns)
			assert.Equal(t, tt.want, m.Excluded(tt.path, tt.isDir))
		})
	}
}

func TestExclusionMatcher_Invalid(t *testing.T) {
	m := NewExclusionMatcher([]string{"", "  ", "[abc", "build", "/"})
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"[abc", "/"}, m.Invalid())
}

func TestExclusionMatcher_ForRoot(t *testing.T) {
	m := NewExclusionMatcher([]string{"build", "__pycache__", "src/gen", "test*"})

	tests := []struct {
		name  string
		root  string
		path  string
		isDir bool
		want  bool
	}{
		{"root itself", "build", "build", true, false},
		{"file under root", "build", "build/tool.py", false, false},
		{"same name deeper", "build", "build/sub/build", true, true},
		{"file under nested same name", "build", "build/sub/build/gen.py", false, true},
		{"other pattern under root", "build", "build/__pycache__/x.py", false, true},
		{"glob root", "tests", "tests/a.py", false, false},
		{"glob below root", "tests", "tests/test_data/b.py", false, true},
		{"path pattern ancestor", "src/gen/api", "src/gen/api/client.py", false, false},
		{"name below nested root", "src/gen/api", "src/gen/api/build/out.py", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scoped := m.ForRoot(tt.root)
			assert.Equal(t, m.Len(), scoped.Len())
			assert.Equal(t, tt.want, scoped.Excluded(tt.path, tt.isDir))
		})
	}

	assert.Same(t, m, m.ForRoot(""))
	assert.True(t, m.Excluded("build/tool.py", false))
}

func TestNamePatterns(t *testing.T) {
	res := NamePatterns([]string{"^_", "(", "^test_"})
	assert.Len(t, res, 2)
	assert.True(t, MatchesAny(res, "_private"))
	assert.True(t, MatchesAny(res, "test_it"))
	assert.False(t, MatchesAny(res, "public"))
}
