package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// TargetNotFound indicates no prefix of the dotted target resolved to a unit
	TargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	// NoRemainingSegments indicates a package container matched with nothing left to name a sibling file
	NoRemainingSegments ErrorCode = "NO_REMAINING_SEGMENTS"
	// SiblingFileNotFound indicates the sibling source file named by the target does not exist
	SiblingFileNotFound ErrorCode = "SIBLING_FILE_NOT_FOUND"
	// InvalidTarget indicates the target string is empty or has empty segments
	InvalidTarget ErrorCode = "INVALID_TARGET"
	// InvalidRequest indicates inconsistent call diagram options
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// ConfigInvalid indicates configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InterpreterUnavailable indicates the interpreter could not report its search path
	InterpreterUnavailable ErrorCode = "INTERPRETER_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing configuration
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type" yaml:"type"`
	Command     string        `json:"command,omitempty" yaml:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty" yaml:"safe,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// Error represents a resolution error with code, message, and suggestions
type Error struct {
	Code           ErrorCode   `json:"code" yaml:"code"`
	Message        string      `json:"message" yaml:"message"`
	Details        interface{} `json:"details,omitempty" yaml:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty" yaml:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Newf creates a new Error with the code's default fixes and a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil, GetSuggestedFixes(code))
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	TargetNotFound: {
		{
			Type:        RunCommand,
			Command:     "pycalls paths",
			Safe:        true,
			Description: "Inspect the search path used for resolution",
		},
		{
			Type:        RunCommand,
			Command:     "pycalls call-diagram --append-path <dir> ${target}",
			Safe:        true,
			Description: "Add the directory holding the top-level package to the search path",
		},
	},
	SiblingFileNotFound: {
		{
			Type:        RunCommand,
			Command:     "pycalls call-diagram <package>.<module>.<symbol>",
			Safe:        true,
			Description: "Name the module file inside the package before the symbol",
		},
	},
	NoRemainingSegments: {
		{
			Type:        RunCommand,
			Command:     "pycalls call-diagram <package>.<module>.<symbol>",
			Safe:        true,
			Description: "The target names a package only; add the module and symbol",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "pycalls config show --diff",
			Safe:        true,
			Description: "Review non-default configuration values",
		},
	},
	InterpreterUnavailable: {
		{
			Type:        EditConfig,
			Command:     "PYCALLS_PYTHON_INTERPRETER=/path/to/python3",
			Safe:        true,
			Description: "Point pycalls at a working Python interpreter",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
