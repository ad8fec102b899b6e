// Package version reports what pycalls binary is running.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X pycalls/internal/version.Version=0.3.0 -X pycalls/internal/version.Commit=abc1234"
//
// Plain `go build` from a checkout leaves Commit and BuildDate empty; they are
// then taken from the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the semantic version; also echoed in every JSON/YAML response.
	Version = "0.3.0"
	// Commit is the source revision.
	Commit = ""
	// BuildDate is the commit or build timestamp.
	BuildDate = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// build is the resolved revision data.
type build struct {
	commit string
	date   string
	dirty  bool
}

func current() build {
	b := build{commit: Commit, date: BuildDate}
	if b.commit != "" && b.date != "" {
		return b
	}
	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.commit == "" {
				b.commit = s.Value
			}
		case "vcs.time":
			if b.date == "" {
				b.date = s.Value
			}
		case "vcs.modified":
			b.dirty = s.Value == "true"
		}
	}
	return b
}

func (b build) shortCommit() string {
	c := b.commit
	if len(c) > 7 {
		c = c[:7]
	}
	if c != "" && b.dirty {
		c += "-dirty"
	}
	return c
}

// Info is the one-line version, with the short commit when one is known.
func Info() string {
	if c := current().shortCommit(); c != "" {
		return Version + " (" + c + ")"
	}
	return Version
}

// Full is the --version text. outline says whether the binary was built with
// the tree-sitter symbol outline (cgo) or without it.
func Full(outline bool) string {
	b := current()
	var sb strings.Builder
	fmt.Fprintf(&sb, "pycalls version %s\n", Version)
	fmt.Fprintf(&sb, "Commit:  %s\n", orUnknown(b.shortCommit()))
	fmt.Fprintf(&sb, "Built:   %s\n", orUnknown(b.date))
	fmt.Fprintf(&sb, "Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if outline {
		sb.WriteString("Outline: tree-sitter python")
	} else {
		sb.WriteString("Outline: unavailable (built without cgo)")
	}
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
