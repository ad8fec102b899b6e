// Package interp obtains the default search path from a Python interpreter.
package interp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pycalls/internal/errors"
	"pycalls/internal/searchpath"
	"pycalls/internal/slogutil"
)

// DefaultTimeout bounds a single interpreter query
const DefaultTimeout = 5000 * time.Millisecond

// Query is the program handed to the interpreter with -c
const Query = "import json, sys; print(json.dumps(sys.path))"

// Runner executes a command and returns its stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Dir string
}

// Run executes name with args in r.Dir.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err
}

// Querier asks an interpreter for its sys.path.
type Querier struct {
	Runner      Runner
	Interpreter string
	Timeout     time.Duration
	// Dir is the working directory of the interpreter; "" entries map to it.
	Dir string
}

// SysPath returns the interpreter's sys.path. The empty entry Python
// reports for -c is replaced by q.Dir.
func (q *Querier) SysPath(ctx context.Context) ([]string, error) {
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runner := q.Runner
	if runner == nil {
		runner = ExecRunner{Dir: q.Dir}
	}

	stdout, stderr, err := runner.Run(ctx, q.Interpreter, "-c", Query)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(
				errors.InterpreterUnavailable,
				fmt.Sprintf("%s did not answer within %s", q.Interpreter, timeout),
				err,
				errors.GetSuggestedFixes(errors.InterpreterUnavailable),
			)
		}
		return nil, errors.New(
			errors.InterpreterUnavailable,
			fmt.Sprintf("failed to run %s", q.Interpreter),
			err,
			errors.GetSuggestedFixes(errors.InterpreterUnavailable),
		).WithDetails(map[string]string{
			"interpreter": q.Interpreter,
			"stderr":      stderr,
		})
	}

	path, err := ParseSysPath(stdout, q.Dir)
	if err != nil {
		return nil, errors.New(
			errors.InterpreterUnavailable,
			fmt.Sprintf("unexpected output from %s", q.Interpreter),
			err,
			nil,
		)
	}
	return path, nil
}

// ParseSysPath decodes the JSON list printed by Query, replacing empty
// entries with dir.
func ParseSysPath(output, dir string) ([]string, error) {
	// Interpreter startup hooks may print before the query does
	line := output
	if i := strings.LastIndexByte(output, '\n'); i >= 0 {
		line = output[i+1:]
	}

	var entries []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e == "" {
			entries[i] = dir
		}
	}
	return entries, nil
}

// FallbackPath is the default path used when no interpreter answers:
// cwd followed by the entries of PYTHONPATH.
func FallbackPath(cwd string, getenv func(string) string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}
	path := []string{cwd}
	for _, entry := range searchpath.SplitList(getenv("PYTHONPATH")) {
		if !filepath.IsAbs(entry) {
			entry = filepath.Join(cwd, entry)
		}
		path = append(path, entry)
	}
	return path
}

// DefaultPath queries q and falls back to FallbackPath on failure. The
// second result reports whether the interpreter answered.
func DefaultPath(ctx context.Context, q *Querier, logger *slog.Logger) ([]string, bool) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	path, err := q.SysPath(ctx)
	if err == nil {
		logger.Debug("Default search path from interpreter",
			"interpreter", q.Interpreter,
			"entries", len(path),
		)
		return path, true
	}

	logger.Warn("Interpreter unavailable, using fallback search path",
		"code", errors.InterpreterUnavailable,
		"interpreter", q.Interpreter,
		"error", err.Error(),
	)
	return FallbackPath(q.Dir, nil), false
}
