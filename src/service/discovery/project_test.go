package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "setup.py", "requirements.txt", "src/pkg/mod.py", "lib/readme.md", "app/views.py")
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`
[project]
name = "shop"
requires-python = ">=3.10"
`), 0o644))

	det, err := DetectProject(root)
	require.NoError(t, err)

	assert.Equal(t, root, det.Root)
	assert.Equal(t, filepath.Base(root), det.Name)
	assert.Equal(t, []string{
		"setuptools project",
		"modern Python project",
		"pip requirements",
		"Git repository",
	}, det.Features)
	assert.Equal(t, []string{root, filepath.Join(root, "src"), filepath.Join(root, "app")}, det.SuggestedIncludeDirs)
	assert.Equal(t, "shop", det.PackageName)
	assert.Equal(t, ">=3.10", det.PythonRequires)
}

func TestDetectProject_PoetryName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`
[tool.poetry]
name = "legacy-app"
`), 0o644))

	det, err := DetectProject(root)
	require.NoError(t, err)
	assert.Equal(t, "legacy-app", det.PackageName)
	assert.Empty(t, det.PythonRequires)
}

func TestDetectProject_BrokenPyproject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("[project\n"), 0o644))

	det, err := DetectProject(root)
	require.NoError(t, err)
	assert.Empty(t, det.PackageName)
	assert.Equal(t, []string{"modern Python project"}, det.Features)
}

func TestDetectProject_MissingRoot(t *testing.T) {
	_, err := DetectProject(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
