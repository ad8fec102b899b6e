// Package diagram runs the resolution pipeline behind a call diagram:
// search path, target resolution, starting file and symbol outline.
package diagram

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/google/uuid"

	"pycalls/internal/errors"
	"pycalls/internal/locator"
	"pycalls/internal/resolver"
	"pycalls/internal/searchpath"
	"pycalls/internal/slogutil"
	"pycalls/internal/symbols"
)

// Outliner reads definitions out of a source file.
type Outliner interface {
	Find(ctx context.Context, path string, leftover []string) (*symbols.Symbol, error)
	Outline(ctx context.Context, path string) ([]symbols.Symbol, error)
}

// Engine wires the resolution steps together.
type Engine struct {
	finder   resolver.UnitFinder
	locator  locator.Locator
	outliner Outliner
	logger   *slog.Logger
}

// NewEngine creates an Engine. A nil outliner skips the symbol step and a
// nil logger discards output.
func NewEngine(finder resolver.UnitFinder, loc locator.Locator, outliner Outliner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Engine{
		finder:   finder,
		locator:  loc,
		outliner: outliner,
		logger:   logger,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	RunID      string                 `json:"runId" yaml:"runId"`
	Target     string                 `json:"target" yaml:"target"`
	SearchPath []string               `json:"searchPath" yaml:"searchPath"`
	PathMode   searchpath.Mode        `json:"pathMode" yaml:"pathMode"`
	Unit       *resolver.ResolvedUnit `json:"unit" yaml:"unit"`
	Start      *locator.StartingFile  `json:"start" yaml:"start"`
	Symbol     *symbols.Symbol        `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Symbols    []symbols.Symbol       `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Walk       WalkSpec               `json:"walk" yaml:"walk"`
	Warnings   []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Run resolves req.Target to its starting file and, when an outliner is
// set, to the definition the leftover segments name.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.New().String()
	logger := e.logger.With(slogutil.RunKey, runID)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := resolver.ParseTarget(req.Target)
	if err != nil {
		return nil, err
	}

	path, mode := searchpath.BuildWithMode(req.DefaultPath, req.AppendPath, req.SubstitutePath)
	logger.Debug("Search path built", "mode", mode, "entries", len(path))

	unit := resolver.New(e.finder, logger).Resolve(target, path)
	if unit == nil {
		return nil, errors.Newf(errors.TargetNotFound, "unable to locate module containing %s", target).
			WithDetails(map[string]interface{}{
				"target":     target.String(),
				"searchPath": path.Strings(),
			})
	}
	logger.Info("Resolved unit", "unit", unit.Name, "origin", unit.Origin, "leftover", unit.Leftover)

	start, err := e.locator.Locate(unit.Origin, unit.Leftover)
	if err != nil {
		return nil, err
	}
	logger.Info("Starting file", "path", start.Path, "leftover", start.Leftover, "descended", start.Descended)

	result := &Result{
		RunID:      runID,
		Target:     target.String(),
		SearchPath: path.Strings(),
		PathMode:   mode,
		Unit:       unit,
		Start:      start,
		Walk:       req.Walk(),
	}

	if e.outliner == nil {
		return result, nil
	}

	if len(start.Leftover) > 0 {
		sym, err := e.outliner.Find(ctx, start.Path, start.Leftover)
		if err != nil {
			result.warn(logger, "Symbol not located in starting file", start.Path, err)
		}
		result.Symbol = sym
	}

	if req.ListSymbols {
		syms, err := e.outliner.Outline(ctx, start.Path)
		if err != nil {
			result.warn(logger, "Starting file not outlined", start.Path, err)
		}
		result.Symbols = syms
		logger.Debug("Starting file outlined", "path", start.Path, "definitions", len(syms))
	}

	return result, nil
}

// warn records an outline failure. A build without the outliner is not
// worth a warning.
func (r *Result) warn(logger *slog.Logger, msg, path string, err error) {
	if stderrors.Is(err, symbols.ErrUnavailable) {
		logger.Debug("Symbol outline unavailable", "error", err.Error())
		return
	}
	logger.Warn(msg, "path", path, "error", err.Error())
	r.Warnings = append(r.Warnings, err.Error())
}
