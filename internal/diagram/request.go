package diagram

import (
	"pycalls/internal/errors"
)

// Request carries everything a call-diagram run needs.
type Request struct {
	// Target is the dotted symbol path, e.g. "pkg.mod.Class.method"
	Target string

	// DefaultPath is the host's search path, used unless SubstitutePath is set
	DefaultPath []string

	// AppendPath is an OS path list placed ahead of DefaultPath
	AppendPath string

	// SubstitutePath is an OS path list replacing DefaultPath entirely
	SubstitutePath string

	// Depths in call levels; zero means not requested
	Forward  int
	Backward int
	Radius   int

	// ListSymbols asks for every definition in the starting file
	ListSymbols bool
}

// Validate checks the depth options.
func (r Request) Validate() error {
	depths := []struct {
		name  string
		value int
	}{
		{"forward", r.Forward},
		{"backward", r.Backward},
		{"radius", r.Radius},
	}
	for _, d := range depths {
		if d.value < 0 {
			return errors.Newf(errors.InvalidRequest, "%s depth must not be negative, got %d", d.name, d.value)
		}
	}
	if r.Radius > 0 && (r.Forward > 0 || r.Backward > 0) {
		return errors.Newf(errors.InvalidRequest, "radius cannot be combined with forward or backward depths")
	}
	return nil
}

// Walk direction names.
const (
	DirectionNone     = "none"
	DirectionForward  = "forward"
	DirectionBackward = "backward"
	DirectionBoth     = "both"
)

// WalkSpec describes the call-graph traversal requested for the resolved
// symbol. The traversal itself is not performed by this package.
type WalkSpec struct {
	Direction   string `json:"direction" yaml:"direction"`
	Forward     int    `json:"forward,omitempty" yaml:"forward,omitempty"`
	Backward    int    `json:"backward,omitempty" yaml:"backward,omitempty"`
	Radius      int    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Implemented bool   `json:"implemented" yaml:"implemented"`
}

// Walk returns the traversal described by r. A radius walks both ways.
func (r Request) Walk() WalkSpec {
	w := WalkSpec{
		Forward:  r.Forward,
		Backward: r.Backward,
		Radius:   r.Radius,
	}

	switch {
	case r.Radius > 0:
		w.Direction = DirectionBoth
	case r.Forward > 0 && r.Backward > 0:
		w.Direction = DirectionBoth
	case r.Forward > 0:
		w.Direction = DirectionForward
	case r.Backward > 0:
		w.Direction = DirectionBackward
	default:
		w.Direction = DirectionNone
	}
	return w
}
