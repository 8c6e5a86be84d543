package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative slash paths) under root
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x = 1\n"), 0o644))
	}
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func discover(t *testing.T, opts Options) *Result {
	t.Helper()
	res, err := Discover(context.Background(), opts)
	require.NoError(t, err)
	return res
}

func TestDiscover_Exclusions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"main.py",
		"pkg/core.py",
		"pkg/__pycache__/core.cpython-311.py",
		"build/gen.py",
		"venv/lib/site.py",
		"venv_old/lib/site.py",
		"py39_venv/lib/site.py",
		"myvenv/app.py",
		"pkg/test_core.py",
		"src/legacy/old.py",
		"src/current.py",
		"notes.txt",
	)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "no patterns",
			patterns: nil,
			want: []string{
				"build/gen.py", "main.py", "myvenv/app.py", "pkg/__pycache__/core.cpython-311.py",
				"pkg/core.py", "pkg/test_core.py", "py39_venv/lib/site.py", "src/current.py",
				"src/legacy/old.py", "venv/lib/site.py", "venv_old/lib/site.py",
			},
		},
		{
			name:     "names and venv variants",
			patterns: []string{"__pycache__", "build", "venv"},
			want: []string{
				"main.py", "myvenv/app.py", "pkg/core.py", "pkg/test_core.py",
				"src/current.py", "src/legacy/old.py",
			},
		},
		{
			name:     "file glob",
			patterns: []string{"test_*.py", "venv", "build", "__pycache__"},
			want: []string{
				"main.py", "myvenv/app.py", "pkg/core.py", "src/current.py", "src/legacy/old.py",
			},
		},
		{
			name:     "path pattern",
			patterns: []string{"src/legacy", "venv", "build", "__pycache__"},
			want: []string{
				"main.py", "myvenv/app.py", "pkg/core.py", "pkg/test_core.py", "src/current.py",
			},
		},
		{
			name:     "negation re-includes a file",
			patterns: []string{"test_*.py", "!pkg/test_core.py", "venv", "build", "__pycache__"},
			want: []string{
				"main.py", "myvenv/app.py", "pkg/core.py", "pkg/test_core.py",
				"src/current.py", "src/legacy/old.py",
			},
		},
		{
			name:     "negation cannot reach into pruned dir",
			patterns: []string{"build", "!build/gen.py", "venv", "__pycache__", "src", "pkg", "myvenv"},
			want:     []string{"main.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := discover(t, Options{Root: root, ExcludePatterns: tt.patterns})
			assert.Equal(t, tt.want, rel(t, root, res.Files))
		})
	}
}

func TestDiscover_AbsoluteRootComponentsIgnored(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "build", "project")
	writeTree(t, root, "app.py")

	res := discover(t, Options{Root: root, ExcludePatterns: []string{"build"}})
	assert.Equal(t, []string{"app.py"}, rel(t, root, res.Files))
}

func TestDiscover_ExplicitIncludeBeatsExclude(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		include  string
		patterns []string
		want     []string
	}{
		{
			name:     "other patterns still apply",
			files:    []string{"app.py", "build/tool.py", "build/__pycache__/cached.py"},
			include:  "build",
			patterns: []string{"build", "__pycache__"},
			want:     []string{"build/tool.py"},
		},
		{
			name:     "same name deeper is excluded",
			files:    []string{"build/tool.py", "build/sub/build/gen.py", "build/sub/keep.py"},
			include:  "build",
			patterns: []string{"build"},
			want:     []string{"build/sub/keep.py", "build/tool.py"},
		},
		{
			name:     "glob deeper is excluded",
			files:    []string{"tests/a.py", "tests/test_data/b.py"},
			include:  "tests",
			patterns: []string{"test*"},
			want:     []string{"tests/a.py"},
		},
		{
			name:     "path pattern on ancestor",
			files:    []string{"src/gen/api/client.py", "src/gen/api/build/out.py"},
			include:  "src/gen/api",
			patterns: []string{"src/gen", "build"},
			want:     []string{"src/gen/api/client.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files...)

			res := discover(t, Options{
				Root:            root,
				IncludeDirs:     []string{tt.include},
				ExcludePatterns: tt.patterns,
			})
			assert.Equal(t, tt.want, rel(t, root, res.Files))
		})
	}
}

func TestDiscover_UnreadableDirectorySkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	writeTree(t, root, "a.py", "locked/b.py", "z/c.py")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res := discover(t, Options{Root: root})
	assert.Equal(t, []string{"a.py", "z/c.py"}, rel(t, root, res.Files))
}

func TestDiscover_NestedIncludesDeduplicated(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py", "src/b.py", "src/pkg/c.py")

	res := discover(t, Options{
		Root:        root,
		IncludeDirs: []string{root, filepath.Join(root, "src"), "src/pkg"},
	})
	assert.Equal(t, []string{"a.py", "src/b.py", "src/pkg/c.py"}, rel(t, root, res.Files))
	assert.Equal(t, 3, res.PerInclude[root])
	assert.Zero(t, res.PerInclude["src/pkg"])
}

func TestDiscover_MissingIncludeSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/a.py")

	res := discover(t, Options{Root: root, IncludeDirs: []string{"src", "does-not-exist"}})
	assert.Equal(t, []string{"src/a.py"}, rel(t, root, res.Files))
	assert.Equal(t, []string{"does-not-exist"}, res.Missing)
}

func TestDiscover_IncludeFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "tools/script.py", "tools/readme.md")

	res := discover(t, Options{
		Root:        root,
		IncludeDirs: []string{"tools/script.py", "tools/readme.md"},
	})
	assert.Equal(t, []string{"tools/script.py"}, rel(t, root, res.Files))
}

func TestDiscover_Extensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py", "b.pyi", "c.txt")

	res := discover(t, Options{Root: root, Extensions: []string{"py", ".pyi"}})
	assert.Equal(t, []string{"a.py", "b.pyi"}, rel(t, root, res.Files))
}

func TestDiscover_SymlinkedFileDeduplicated(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "real/mod.py")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "mod.py"), filepath.Join(root, "alias.py")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.py"), filepath.Join(root, "broken.py")))

	res := discover(t, Options{Root: root})
	assert.Equal(t, []string{"alias.py"}, rel(t, root, res.Files))
}

func TestDiscover_SymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, "main.py")
	writeTree(t, outside, "shared/util.py")
	require.NoError(t, os.Symlink(filepath.Join(outside, "shared"), filepath.Join(root, "shared")))
	// cycle back to the root
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	res := discover(t, Options{Root: root})
	assert.Equal(t, []string{"main.py"}, rel(t, root, res.Files))

	res = discover(t, Options{Root: root, FollowSymlinks: true})
	assert.Equal(t, []string{"main.py", "shared/util.py"}, rel(t, root, res.Files))
}

func TestDiscover_SymlinkedDirectoryPolicy(t *testing.T) {
	tests := []struct {
		name     string
		links    []string
		patterns []string
		want     []string
		excluded int
	}{
		{
			name:     "excluded link is pruned",
			links:    []string{"vendored"},
			patterns: []string{"vendored"},
			want:     []string{"main.py"},
			excluded: 1,
		},
		{
			name:  "aliases report the smallest path",
			links: []string{"b_link", "a_link"},
			want:  []string{"a_link/util.py", "main.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			outside := t.TempDir()
			writeTree(t, root, "main.py")
			writeTree(t, outside, "shared/util.py")
			for _, link := range tt.links {
				require.NoError(t, os.Symlink(filepath.Join(outside, "shared"), filepath.Join(root, link)))
			}

			res := discover(t, Options{Root: root, ExcludePatterns: tt.patterns, FollowSymlinks: true})
			assert.Equal(t, tt.want, rel(t, root, res.Files))
			assert.Equal(t, tt.excluded, res.Excluded)
		})
	}
}

func TestDiscover_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, Options{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_InvalidRoot(t *testing.T) {
	_, err := Discover(context.Background(), Options{Root: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestProvider_CachesResult(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.py")

	p := NewProvider(Options{Root: root})
	files, err := p.Files(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	writeTree(t, root, "b.py")
	files, err = p.Files(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 1)

	p.Reset()
	files, err = p.Files(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
