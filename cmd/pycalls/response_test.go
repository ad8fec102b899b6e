package main

import (
	stderrors "errors"
	"fmt"
	"testing"

	"pycalls/internal/errors"
)

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"coded", errors.Newf(errors.SiblingFileNotFound, "x not found"), errors.SiblingFileNotFound},
		{"wrapped coded", fmt.Errorf("outer: %w", errors.Newf(errors.InvalidTarget, "empty")), errors.InvalidTarget},
		{"plain", stderrors.New("boom"), errors.InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newErrorResponse(tt.err, "pkg.mod")
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
			if resp.Error.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestNewErrorResponse_DoesNotMutateDefaults(t *testing.T) {
	before := errors.ErrorActions[errors.TargetNotFound][1].Command

	_ = newErrorResponse(errors.Newf(errors.TargetNotFound, "nope"), "x.y")

	if after := errors.ErrorActions[errors.TargetNotFound][1].Command; after != before {
		t.Errorf("default fix command changed to %q", after)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"human", "json", "yaml"} {
		if !validFormat(f) {
			t.Errorf("validFormat(%q) = false", f)
		}
	}
	for _, f := range []string{"", "xml", "JSON"} {
		if validFormat(f) {
			t.Errorf("validFormat(%q) = true", f)
		}
	}
}
