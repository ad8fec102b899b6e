// Package locator decides which file symbol lookup starts in once a unit has
// been resolved.
package locator

import (
	"os"
	"path/filepath"
	"strings"

	"pycalls/internal/errors"
)

const (
	// DefaultContainerFile marks a directory as a package.
	DefaultContainerFile = "__init__.py"
	// DefaultSourceExt is appended to a segment to name a sibling module file.
	DefaultSourceExt = ".py"
)

// StartingFile is where symbol lookup begins.
type StartingFile struct {
	Path     string   `json:"path" yaml:"path"`
	Leftover []string `json:"leftover" yaml:"leftover"`
	// Descended is set when Path is a sibling of a package container file.
	Descended bool `json:"descended,omitempty" yaml:"descended,omitempty"`
}

// Locator maps a unit origin to its starting file.
type Locator struct {
	ContainerFile string
	SourceExt     string
	// Suffixes are the other extensions the container stem is recognized
	// with; the finder accepts a package container under any of them.
	Suffixes []string
}

// New returns a Locator using the default container file name and extension.
func New() Locator {
	return Locator{
		ContainerFile: DefaultContainerFile,
		SourceExt:     DefaultSourceExt,
	}
}

// IsContainer reports whether origin is a package container file: the
// container file itself, or its stem with one of the Suffixes.
func (l Locator) IsContainer(origin string) bool {
	base := filepath.Base(origin)
	container := l.containerFile()
	if base == container {
		return true
	}
	stem := strings.TrimSuffix(container, filepath.Ext(container))
	for _, suffix := range l.Suffixes {
		if base == stem+suffix {
			return true
		}
	}
	return false
}

// Locate returns the starting file for a unit loaded from origin.
//
// A non-container origin is returned as is with leftover untouched. For a
// container, the first leftover segment names a sibling source file in the
// same directory; that file must exist and the segment is consumed. Only one
// level is descended. leftover itself is never modified.
func (l Locator) Locate(origin string, leftover []string) (*StartingFile, error) {
	if !l.IsContainer(origin) {
		return &StartingFile{
			Path:     origin,
			Leftover: leftover,
		}, nil
	}

	if len(leftover) == 0 {
		return nil, errors.Newf(errors.NoRemainingSegments,
			"%s is a package container and no segments remain to name a module in it", origin)
	}

	sibling := filepath.Join(filepath.Dir(origin), leftover[0]+l.sourceExt())
	info, err := os.Stat(sibling)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.SiblingFileNotFound, sibling+" not found", nil,
				errors.GetSuggestedFixes(errors.SiblingFileNotFound)).
				WithDetails(map[string]string{"package": filepath.Dir(origin), "module": leftover[0]})
		}
		return nil, errors.New(errors.SiblingFileNotFound, "cannot stat "+sibling, err, nil)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.SiblingFileNotFound, "%s is a directory, not a source file", sibling)
	}

	rest := make([]string, len(leftover)-1)
	copy(rest, leftover[1:])
	return &StartingFile{
		Path:      sibling,
		Leftover:  rest,
		Descended: true,
	}, nil
}

func (l Locator) containerFile() string {
	if l.ContainerFile == "" {
		return DefaultContainerFile
	}
	return l.ContainerFile
}

func (l Locator) sourceExt() string {
	if l.SourceExt == "" {
		return DefaultSourceExt
	}
	return l.SourceExt
}
