// Package symbols locates class and function definitions inside a Python
// source file using tree-sitter.
package symbols

import (
	"errors"
	"strings"
)

// Kind classifies a definition.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
)

// Symbol is a definition found in a source file.
type Symbol struct {
	Name          string `json:"name" yaml:"name"`
	QualifiedPath string `json:"qualifiedPath" yaml:"qualifiedPath"`
	Kind          Kind   `json:"kind" yaml:"kind"`
	Path          string `json:"path" yaml:"path"`
	Line          int    `json:"line" yaml:"line"`       // 1-indexed
	EndLine       int    `json:"endLine" yaml:"endLine"` // 1-indexed
}

var (
	// ErrSymbolNotFound is returned when a leftover segment names no definition.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUnavailable is returned when the binary was built without cgo.
	ErrUnavailable = errors.New("symbol outline requires a cgo build")
)

func qualify(container, name string) string {
	if container == "" {
		return name
	}
	return container + "." + name
}

func joinSegments(segments []string) string {
	return strings.Join(segments, ".")
}
