// Package project locates the Python project enclosing a directory and
// reads its pycalls settings from pyproject.toml.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// PyprojectFile is the manifest carrying [tool.pycalls]
const PyprojectFile = "pyproject.toml"

// Manifests mark a project root, in priority order.
var Manifests = []string{PyprojectFile, "setup.py", "setup.cfg"}

// Settings is the [tool.pycalls] table of pyproject.toml.
type Settings struct {
	// SearchPath entries are relative to the project root
	SearchPath []string `toml:"search-path,omitempty"`

	// Interpreter replaces python.interpreter from config
	Interpreter string `toml:"interpreter,omitempty"`

	// ContainerFile replaces finder.containerFile from config
	ContainerFile string `toml:"container-file,omitempty"`

	// Suffixes replaces finder.suffixes from config
	Suffixes []string `toml:"suffixes,omitempty"`
}

type pyproject struct {
	Tool struct {
		Pycalls Settings `toml:"pycalls"`
	} `toml:"tool"`
}

// Project is a detected Python project.
type Project struct {
	Root      string   `json:"root" yaml:"root"`
	Manifest  string   `json:"manifest" yaml:"manifest"`
	SrcLayout bool     `json:"srcLayout" yaml:"srcLayout"`
	Settings  Settings `json:"settings" yaml:"settings"`
}

// FindRoot walks up from start to the first directory holding one of
// Manifests. Returns the root, the manifest found, and whether one was found.
func FindRoot(start string) (string, string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", false
	}

	for {
		for _, m := range Manifests {
			if info, err := os.Stat(filepath.Join(dir, m)); err == nil && !info.IsDir() {
				return dir, m, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false
		}
		dir = parent
	}
}

// Detect finds the project enclosing start. It returns nil without error
// when start is not inside a project.
func Detect(start string) (*Project, error) {
	root, manifest, ok := FindRoot(start)
	if !ok {
		return nil, nil
	}

	p := &Project{
		Root:      root,
		Manifest:  manifest,
		SrcLayout: HasSrcLayout(root),
	}

	pyprojectPath := filepath.Join(root, PyprojectFile)
	if _, err := os.Stat(pyprojectPath); err == nil {
		settings, err := ParsePyproject(pyprojectPath)
		if err != nil {
			return nil, err
		}
		p.Settings = *settings
	}

	return p, nil
}

// ParsePyproject reads the [tool.pycalls] table from a pyproject.toml file.
// A file without the table yields zero Settings.
func ParsePyproject(filePath string) (*Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", PyprojectFile, err)
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	for _, s := range doc.Tool.Pycalls.Suffixes {
		if !strings.HasPrefix(s, ".") {
			return nil, fmt.Errorf("%s: [tool.pycalls] suffix %q must start with '.'", filePath, s)
		}
	}

	return &doc.Tool.Pycalls, nil
}

// HasSrcLayout reports whether root/src holds at least one package or module.
func HasSrcLayout(root string) bool {
	src := filepath.Join(root, "src")
	entries, err := os.ReadDir(src)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			if _, err := os.Stat(filepath.Join(src, e.Name(), "__init__.py")); err == nil {
				return true
			}
			continue
		}
		if filepath.Ext(e.Name()) == ".py" {
			return true
		}
	}
	return false
}

// SearchPath returns the absolute directories the project contributes to
// the default search path: the configured search-path entries, or src for
// a src layout when none are configured.
func (p *Project) SearchPath() []string {
	if p == nil {
		return nil
	}
	if len(p.Settings.SearchPath) == 0 {
		if p.SrcLayout {
			return []string{filepath.Join(p.Root, "src")}
		}
		return nil
	}

	dirs := make([]string, 0, len(p.Settings.SearchPath))
	for _, entry := range p.Settings.SearchPath {
		if entry == "" {
			continue
		}
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(p.Root, filepath.FromSlash(entry))
		}
		dirs = append(dirs, filepath.Clean(entry))
	}
	return dirs
}
