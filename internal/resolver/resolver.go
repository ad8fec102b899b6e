// Package resolver maps a dotted target onto the deepest importable unit
// visible on a search path, leaving the remaining segments for symbol lookup.
package resolver

import (
	"log/slog"

	"pycalls/internal/searchpath"
	"pycalls/internal/slogutil"
)

// UnitFinder locates an importable unit by its fully qualified dotted name.
// Only the directories in path are consulted.
type UnitFinder interface {
	FindUnit(name string, path []string) (origin string, ok bool)
}

// ResolvedUnit is the unit matched for a target.
type ResolvedUnit struct {
	// Name is the dotted prefix of the target that names the unit
	Name string `json:"name" yaml:"name"`
	// Origin is the file the unit is loaded from
	Origin string `json:"origin" yaml:"origin"`
	// Leftover holds the target segments after Name, never empty
	Leftover []string `json:"leftover" yaml:"leftover"`
}

// Resolver walks dotted prefixes of a target through a UnitFinder.
type Resolver struct {
	finder UnitFinder
	logger *slog.Logger
}

// New creates a Resolver. A nil logger discards output.
func New(finder UnitFinder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Resolver{finder: finder, logger: logger}
}

// Resolve returns the unit for the longest prefix of target the finder
// recognizes, or nil when no prefix matches.
//
// Prefixes are tried shortest first and the final segment is never tried on
// its own, so a match always leaves at least one segment over. A later match
// supersedes an earlier one; the superseded unit is logged at warn level.
func (r *Resolver) Resolve(target Target, path searchpath.SearchPath) *ResolvedUnit {
	var best *ResolvedUnit

	for n := 1; n < len(target); n++ {
		name := target.Prefix(n)

		origin, ok := r.finder.FindUnit(name, path.Strings())
		if !ok {
			r.logger.Debug("No unit for prefix", "prefix", name)
			continue
		}

		if best != nil {
			r.logger.Warn("Multiple units found, keeping the deeper match",
				"superseded", best.Name,
				"supersededOrigin", best.Origin,
				"supersededLeftover", best.Leftover,
				"unit", name,
			)
		}

		leftover := make([]string, len(target)-n)
		copy(leftover, target[n:])
		best = &ResolvedUnit{
			Name:     name,
			Origin:   origin,
			Leftover: leftover,
		}
		r.logger.Debug("Unit matched", "unit", name, "origin", origin, "leftover", leftover)
	}

	return best
}
