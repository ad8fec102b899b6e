// Package searchpath builds the ordered directory list consulted when
// resolving a dotted unit name.
package searchpath

import (
	"os"
	"path/filepath"
	"strings"
)

// SearchPath is an ordered list of directories. The first directory holding a
// match wins, so order is significant. A SearchPath is not modified after Build.
type SearchPath []string

// Mode records which input produced a SearchPath.
type Mode string

const (
	// ModeDefault means the default path was used verbatim
	ModeDefault Mode = "default"
	// ModeAppend means the append entries were placed ahead of the default path
	ModeAppend Mode = "append"
	// ModeSubstitute means the substitute entries replaced the default path
	ModeSubstitute Mode = "substitute"
)

// Build returns the search path for one invocation.
//
// A non-empty substitutePath alone becomes the result, absolutized and
// deduplicated. Otherwise a non-empty appendPath is placed ahead of
// defaultPath and the combination is absolutized and deduplicated, keeping
// the first occurrence. With neither, defaultPath is returned unchanged.
// Both strings are lists joined by os.PathListSeparator.
func Build(defaultPath []string, appendPath, substitutePath string) SearchPath {
	sp, _ := BuildWithMode(defaultPath, appendPath, substitutePath)
	return sp
}

// BuildWithMode is Build, also reporting which input won.
func BuildWithMode(defaultPath []string, appendPath, substitutePath string) (SearchPath, Mode) {
	if substitutePath != "" {
		return normalize(SplitList(substitutePath)), ModeSubstitute
	}

	if appendPath != "" {
		combined := make([]string, 0, len(defaultPath)+8)
		combined = append(combined, SplitList(appendPath)...)
		combined = append(combined, defaultPath...)
		return normalize(combined), ModeAppend
	}

	// The default path is trusted as already normalized.
	return SearchPath(defaultPath), ModeDefault
}

// SplitList splits a PATH-style list on os.PathListSeparator, dropping empty items.
func SplitList(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Join is the inverse of SplitList.
func Join(dirs []string) string {
	return strings.Join(dirs, string(os.PathListSeparator))
}

// Dedupe removes repeated entries, keeping the first occurrence of each.
func Dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Absolute returns the absolute form of dir. If the working directory cannot
// be determined the entry is returned as given.
func Absolute(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func normalize(dirs []string) SearchPath {
	abs := make([]string, len(dirs))
	for i, d := range dirs {
		abs[i] = Absolute(d)
	}
	return SearchPath(Dedupe(abs))
}

// Strings returns the directories as a plain slice.
func (sp SearchPath) Strings() []string {
	return []string(sp)
}

// Contains reports whether dir is on the search path.
func (sp SearchPath) Contains(dir string) bool {
	for _, d := range sp {
		if d == dir {
			return true
		}
	}
	return false
}

// String renders the path as a PATH-style list.
func (sp SearchPath) String() string {
	return Join(sp)
}
