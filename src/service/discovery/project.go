package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"cq-suite/src/util"
)

// projectIndicators are checked in order; the description is reported when the
// file or directory exists in the project root.
var projectIndicators = []struct {
	name        string
	description string
}{
	{"setup.py", "setuptools project"},
	{"pyproject.toml", "modern Python project"},
	{"requirements.txt", "pip requirements"},
	{"Pipfile", "pipenv project"},
	{"poetry.lock", "poetry project"},
	{"manage.py", "Django project"},
	{"app.py", "Flask project"},
	{"main.py", "FastAPI/general project"},
	{".git", "Git repository"},
}

// CommonSourceDirs are suggested as include dirs when they hold Python files
var CommonSourceDirs = []string{"src", "app", "lib", "core", "api", "backend", "frontend"}

// Detection describes an auto-detected project structure
type Detection struct {
	Root                 string   `json:"project_root"`
	Name                 string   `json:"project_name"`
	Features             []string `json:"detected_features"`
	SuggestedIncludeDirs []string `json:"suggested_include_dirs"`
	PackageName          string   `json:"package_name,omitempty"`
	PythonRequires       string   `json:"python_requires,omitempty"`
}

type pyproject struct {
	Project struct {
		Name           string `toml:"name"`
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name string `toml:"name"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// DetectProject inspects a project directory and suggests a configuration
func DetectProject(projectPath string) (*Detection, error) {
	root, err := resolveDir(projectPath)
	if err != nil {
		return nil, fmt.Errorf("project path does not exist: %w", err)
	}

	det := &Detection{
		Root:                 root,
		Name:                 filepath.Base(root),
		SuggestedIncludeDirs: []string{root},
	}

	for _, ind := range projectIndicators {
		if _, err := os.Stat(filepath.Join(root, ind.name)); err == nil {
			det.Features = append(det.Features, ind.description)
		}
	}

	for _, name := range CommonSourceDirs {
		dir := filepath.Join(root, name)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if containsPython(dir) {
			det.SuggestedIncludeDirs = append(det.SuggestedIncludeDirs, dir)
		}
	}

	if err := readPyproject(filepath.Join(root, "pyproject.toml"), det); err != nil {
		util.Warn("Could not parse pyproject.toml: %v", err)
	}

	return det, nil
}

func readPyproject(path string, det *Detection) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var meta pyproject
	if err := toml.Unmarshal(data, &meta); err != nil {
		return err
	}

	det.PackageName = meta.Project.Name
	if det.PackageName == "" {
		det.PackageName = meta.Tool.Poetry.Name
	}
	det.PythonRequires = meta.Project.RequiresPython
	return nil
}

var errFound = errors.New("found")

func containsPython(dir string) bool {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".py") {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}
