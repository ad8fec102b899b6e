// Package finder locates Python modules and packages on disk by dotted name,
// following the lookup order of the interpreter's path-based finder.
package finder

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pycalls/internal/slogutil"
)

// Kind classifies a found unit.
type Kind string

const (
	// KindModule is a single source file
	KindModule Kind = "module"
	// KindPackage is a directory with a container file
	KindPackage Kind = "package"
	// KindNamespace is a directory without a container file, possibly spread over several path entries
	KindNamespace Kind = "namespace"
)

// Spec describes a found unit.
type Spec struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Origin is the file the unit is loaded from; empty for namespace packages
	Origin string `json:"origin,omitempty"`
	// Locations are the directories searched for submodules; empty for modules
	Locations []string `json:"locations,omitempty"`
}

// Options configures a PathFinder.
type Options struct {
	// Suffixes are the source file suffixes tried, in order
	Suffixes []string
	// InitStem is the container file name without its suffix
	InitStem string
}

// DefaultOptions returns the options for plain Python sources.
func DefaultOptions() Options {
	return Options{
		Suffixes: []string{".py"},
		InitStem: "__init__",
	}
}

// OptionsForContainer derives options from a container file name such as
// "__init__.py". Its extension is added in front of suffixes when missing;
// otherwise the configured order stands.
func OptionsForContainer(containerFile string, suffixes []string) Options {
	opts := DefaultOptions()
	ext := filepath.Ext(containerFile)
	if stem := strings.TrimSuffix(containerFile, ext); stem != "" {
		opts.InitStem = stem
	}
	if len(suffixes) > 0 {
		opts.Suffixes = append([]string(nil), suffixes...)
	}
	if ext != "" && !containsString(opts.Suffixes, ext) {
		opts.Suffixes = append([]string{ext}, opts.Suffixes...)
	}
	return opts
}

// entry is what the finder remembers about one name in a directory.
type entry struct {
	isDir bool
}

// PathFinder finds units by walking a search path. Directory listings are
// cached for the life of the finder; it is not safe for concurrent use.
type PathFinder struct {
	opts     Options
	logger   *slog.Logger
	listings map[string]map[string]entry
}

// New creates a PathFinder. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *PathFinder {
	if len(opts.Suffixes) == 0 {
		opts.Suffixes = DefaultOptions().Suffixes
	}
	if opts.InitStem == "" {
		opts.InitStem = DefaultOptions().InitStem
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &PathFinder{
		opts:     opts,
		logger:   logger,
		listings: make(map[string]map[string]entry),
	}
}

// FindUnit returns the origin file of the unit called name, searching only
// the directories in path. Namespace packages have no origin and are
// reported as not found.
func (f *PathFinder) FindUnit(name string, path []string) (string, bool) {
	spec := f.FindSpec(name, path)
	if spec == nil || spec.Origin == "" {
		return "", false
	}
	return spec.Origin, true
}

// FindSpec resolves name one component at a time: the first component over
// path, each later one over the locations of its parent package.
func (f *PathFinder) FindSpec(name string, path []string) *Spec {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if !IsIdentifier(p) {
			f.logger.Debug("Not an identifier", "name", name, "component", p)
			return nil
		}
	}

	dirs := path
	var spec *Spec
	for i, part := range parts {
		if spec != nil {
			if spec.Kind == KindModule {
				f.logger.Debug("Parent is a module, not a package", "parent", spec.Name, "name", name)
				return nil
			}
			dirs = spec.Locations
		}
		spec = f.findIn(strings.Join(parts[:i+1], "."), part, dirs)
		if spec == nil {
			f.logger.Debug("Unit not found", "name", name, "missing", strings.Join(parts[:i+1], "."))
			return nil
		}
	}

	f.logger.Debug("Unit found", "name", name, "kind", spec.Kind, "origin", spec.Origin)
	return spec
}

// findIn looks for one component across dirs. The first regular package or
// module wins; bare directories are collected as namespace portions and used
// only when nothing regular exists anywhere.
func (f *PathFinder) findIn(fullname, tail string, dirs []string) *Spec {
	var portions []string

	for _, d := range dirs {
		dir := absDir(d)
		listing := f.list(dir)
		if len(listing) == 0 {
			continue
		}

		isNamespace := false
		if e, ok := listing[tail]; ok && e.isDir {
			pkgDir := filepath.Join(dir, tail)
			sub := f.list(pkgDir)
			for _, suffix := range f.opts.Suffixes {
				initName := f.opts.InitStem + suffix
				if e, ok := sub[initName]; ok && !e.isDir {
					return &Spec{
						Name:      fullname,
						Kind:      KindPackage,
						Origin:    filepath.Join(pkgDir, initName),
						Locations: []string{pkgDir},
					}
				}
			}
			isNamespace = true
		}

		for _, suffix := range f.opts.Suffixes {
			if e, ok := listing[tail+suffix]; ok && !e.isDir {
				return &Spec{
					Name:   fullname,
					Kind:   KindModule,
					Origin: filepath.Join(dir, tail+suffix),
				}
			}
		}

		if isNamespace {
			portions = append(portions, filepath.Join(dir, tail))
		}
	}

	if len(portions) > 0 {
		return &Spec{
			Name:      fullname,
			Kind:      KindNamespace,
			Locations: portions,
		}
	}
	return nil
}

// list returns the cached listing of dir, reading it on first use.
// Unreadable directories list as empty.
func (f *PathFinder) list(dir string) map[string]entry {
	if listing, ok := f.listings[dir]; ok {
		return listing
	}

	listing := make(map[string]entry)
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		f.logger.Debug("Cannot list directory", "dir", dir, "error", err)
	}
	for _, de := range dirEntries {
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, de.Name()))
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}
		listing[de.Name()] = entry{isDir: isDir}
	}

	f.listings[dir] = listing
	return listing
}

// IsIdentifier reports whether s can name a module.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// absDir maps a search path entry to the directory it denotes; the empty
// entry is the working directory.
func absDir(d string) string {
	if d == "" {
		d = "."
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return d
	}
	return abs
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
