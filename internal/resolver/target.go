package resolver

import (
	"strings"

	"pycalls/internal/errors"
)

// Target is a dotted symbol path split into its segments,
// e.g. "pkg.mod.Class.method" -> [pkg mod Class method].
type Target []string

// ParseTarget splits s on "." and rejects empty segments.
func ParseTarget(s string) (Target, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.Newf(errors.InvalidTarget, "target is empty")
	}
	segments := strings.Split(s, ".")
	for i, seg := range segments {
		if seg == "" {
			return nil, errors.Newf(errors.InvalidTarget,
				"target %q has an empty segment at position %d", s, i+1)
		}
		if strings.TrimSpace(seg) != seg {
			return nil, errors.Newf(errors.InvalidTarget,
				"target %q has whitespace around segment %q", s, seg)
		}
	}
	return Target(segments), nil
}

// String joins the segments back into dotted form.
func (t Target) String() string {
	return strings.Join(t, ".")
}

// Prefix returns the dotted name of the first n segments.
func (t Target) Prefix(n int) string {
	return strings.Join(t[:n], ".")
}
