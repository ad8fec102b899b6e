package main

import (
	"fmt"
	"os"
	"strings"

	"pycalls/internal/errors"
	"pycalls/internal/version"
)

// ErrorResponse wraps a coded error for structured output
type ErrorResponse struct {
	Version string        `json:"version" yaml:"version"`
	Error   *errors.Error `json:"error" yaml:"error"`
}

// newErrorResponse converts err to a coded error, filling ${target} in
// suggested fix commands.
func newErrorResponse(err error, target string) *ErrorResponse {
	var coded *errors.Error
	if e, ok := err.(*errors.Error); ok {
		coded = e
	} else if errors.CodeOf(err) != "" {
		coded = errors.New(errors.CodeOf(err), err.Error(), nil, nil)
	} else {
		coded = errors.New(errors.InternalError, err.Error(), nil, nil)
	}

	fixes := make([]errors.FixAction, len(coded.SuggestedFixes))
	for i, fix := range coded.SuggestedFixes {
		fix.Command = strings.ReplaceAll(fix.Command, "${target}", target)
		fixes[i] = fix
	}

	return &ErrorResponse{
		Version: version.Version,
		Error: &errors.Error{
			Code:           coded.Code,
			Message:        coded.Message,
			Details:        coded.Details,
			SuggestedFixes: fixes,
		},
	}
}

// reportError writes err and returns the exit code for it. Structured
// formats go to stdout so callers always get a parseable document; human
// output goes to stderr.
func reportError(err error, format OutputFormat, target string) int {
	resp := newErrorResponse(err, target)

	if format == FormatJSON || format == FormatYAML {
		if out, ferr := FormatResponse(resp, format); ferr == nil {
			fmt.Println(out)
			return exitCodeFor(err)
		}
	}

	out, _ := formatErrorHuman(resp)
	fmt.Fprintln(os.Stderr, out)
	return exitCodeFor(err)
}

// validFormat reports whether s names an output format
func validFormat(s string) bool {
	switch OutputFormat(s) {
	case FormatJSON, FormatYAML, FormatHuman:
		return true
	}
	return false
}
