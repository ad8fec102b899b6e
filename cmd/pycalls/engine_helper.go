package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pycalls/internal/config"
	"pycalls/internal/errors"
	"pycalls/internal/finder"
	"pycalls/internal/interp"
	"pycalls/internal/locator"
	"pycalls/internal/project"
	"pycalls/internal/searchpath"
	"pycalls/internal/slogutil"
)

// Process exit codes
const (
	exitOK         = 0
	exitResolution = 1
	exitUsage      = 2
)

// environment is the effective configuration for one command run:
// config file and env, then pyproject.toml, then flags.
type environment struct {
	cwd     string
	cfg     *config.Config
	project *project.Project
}

// loadEnvironment loads config from cwd and applies the enclosing project's
// [tool.pycalls] settings on top.
func loadEnvironment(cwd string) (*environment, error) {
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to load configuration", err,
			errors.GetSuggestedFixes(errors.ConfigInvalid))
	}

	proj, err := project.Detect(cwd)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to read project settings", err, nil)
	}
	applyProject(cfg, proj)

	return &environment{cwd: cwd, cfg: cfg, project: proj}, nil
}

// applyProject overlays pyproject.toml settings onto cfg.
func applyProject(cfg *config.Config, proj *project.Project) {
	if proj == nil {
		return
	}
	s := proj.Settings
	if s.Interpreter != "" {
		interpreter := s.Interpreter
		// A path, as opposed to a bare command name, is relative to the project
		if strings.ContainsRune(interpreter, '/') && !filepath.IsAbs(interpreter) {
			interpreter = filepath.Join(proj.Root, filepath.FromSlash(interpreter))
		}
		cfg.Python.Interpreter = interpreter
	}
	if s.ContainerFile != "" {
		cfg.Finder.ContainerFile = s.ContainerFile
	}
	if len(s.Suffixes) > 0 {
		cfg.Finder.Suffixes = append([]string(nil), s.Suffixes...)
	}
}

// validate checks the effective configuration.
func (env *environment) validate() error {
	if err := env.cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, err.Error(), nil,
			errors.GetSuggestedFixes(errors.ConfigInvalid))
	}
	return nil
}

// defaultSearchPath returns the project's entries followed by the
// interpreter's sys.path, or by the fallback path when the interpreter is
// disabled or does not answer.
func (env *environment) defaultSearchPath(ctx context.Context, logger *slog.Logger) ([]string, string) {
	var base []string
	source := "fallback"

	if env.cfg.Python.UseInterpreter {
		q := &interp.Querier{
			Runner:      interp.ExecRunner{Dir: env.cwd},
			Interpreter: env.cfg.Python.Interpreter,
			Timeout:     time.Duration(env.cfg.Python.TimeoutMs) * time.Millisecond,
			Dir:         env.cwd,
		}
		var answered bool
		base, answered = interp.DefaultPath(ctx, q, logger)
		if answered {
			source = "interpreter"
		}
	} else {
		base = interp.FallbackPath(env.cwd, nil)
	}

	combined := append(env.project.SearchPath(), base...)
	return searchpath.Dedupe(combined), source
}

// newFinder builds the filesystem finder from the effective config.
func (env *environment) newFinder(logger *slog.Logger) *finder.PathFinder {
	opts := finder.OptionsForContainer(env.cfg.Finder.ContainerFile, env.cfg.Finder.Suffixes)
	return finder.New(opts, logger)
}

// newLocator builds the locator from the effective config.
func (env *environment) newLocator() locator.Locator {
	return locator.Locator{
		ContainerFile: env.cfg.Finder.ContainerFile,
		SourceExt:     primarySuffix(env.cfg.Finder),
		Suffixes:      env.cfg.Finder.Suffixes,
	}
}

// primarySuffix is the suffix sibling module files are looked up with:
// ".py" when configured, else the first suffix that is not the container's
// own extension.
func primarySuffix(fc config.FinderConfig) string {
	containerExt := filepath.Ext(fc.ContainerFile)
	fallback := ""
	for _, s := range fc.Suffixes {
		if s == locator.DefaultSourceExt {
			return s
		}
		if fallback == "" && s != containerExt {
			fallback = s
		}
	}
	if fallback != "" {
		return fallback
	}
	if containerExt != "" {
		return containerExt
	}
	return locator.DefaultSourceExt
}

// resolveLogLevel determines the effective log level.
// Precedence: --log-level > -v/-q > config logging.level > warn
func resolveLogLevel(cfg *config.Config) (slog.Level, error) {
	if logLevelFlag != "" {
		if !slogutil.IsLevelName(logLevelFlag) {
			return 0, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", logLevelFlag)
		}
		return slogutil.LevelFromString(logLevelFlag), nil
	}
	if verbosity > 0 || quiet {
		return slogutil.LevelFromVerbosity(verbosity, quiet), nil
	}
	if cfg != nil && cfg.Logging.Level != "" {
		return slogutil.LevelFromString(cfg.Logging.Level), nil
	}
	return slog.LevelWarn, nil
}

// newLogger creates the command logger writing to w and, when configured,
// to a log file. The returned func closes the log file.
func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := resolveLogLevel(cfg)
	if err != nil {
		return nil, nil, err
	}

	format := logFormatFlag
	if format == "" && cfg != nil {
		format = cfg.Logging.Format
	}

	handler := slogutil.NewFormatHandler(w, format, level)

	logFile := logFileFlag
	if logFile == "" && cfg != nil {
		logFile = cfg.Logging.File
	}
	if logFile == "" {
		return slog.New(handler), func() {}, nil
	}

	fileHandler, f, err := slogutil.OpenLogFile(logFile, format, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slogutil.NewTeeHandler(handler, fileHandler)), func() { _ = f.Close() }, nil
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	switch errors.CodeOf(err) {
	case errors.InvalidTarget, errors.InvalidRequest, errors.ConfigInvalid:
		return exitUsage
	default:
		return exitResolution
	}
}

// mustGetWorkingDir returns the working directory or exits on error.
func mustGetWorkingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
	return cwd
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}
