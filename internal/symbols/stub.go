//go:build !cgo

package symbols

import "context"

// Outliner is unavailable when CGO is disabled.
type Outliner struct{}

// NewOutliner creates a stub Outliner.
func NewOutliner() *Outliner {
	return &Outliner{}
}

// Available returns whether symbol outline is compiled in.
func Available() bool {
	return false
}

// Outline returns ErrUnavailable when CGO is not available.
func (o *Outliner) Outline(ctx context.Context, path string) ([]Symbol, error) {
	return nil, ErrUnavailable
}

// OutlineSource returns ErrUnavailable when CGO is not available.
func (o *Outliner) OutlineSource(ctx context.Context, path string, source []byte) ([]Symbol, error) {
	return nil, ErrUnavailable
}

// Find returns ErrUnavailable when CGO is not available.
func (o *Outliner) Find(ctx context.Context, path string, leftover []string) (*Symbol, error) {
	if len(leftover) == 0 {
		return nil, nil
	}
	return nil, ErrUnavailable
}

// FindSource returns ErrUnavailable when CGO is not available.
func (o *Outliner) FindSource(ctx context.Context, path string, source []byte, leftover []string) (*Symbol, error) {
	if len(leftover) == 0 {
		return nil, nil
	}
	return nil, ErrUnavailable
}
