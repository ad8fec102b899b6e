package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pycalls/internal/diagram"
	"pycalls/internal/errors"
	"pycalls/internal/symbols"
	"pycalls/internal/version"
)

var (
	cdForward        int
	cdBackward       int
	cdRadius         int
	cdAppendPath     string
	cdSubstitutePath string
	cdPython         string
	cdNoOutline      bool
	cdListSymbols    bool
	cdFormat         string
)

var callDiagramCmd = &cobra.Command{
	Use:   "call-diagram <TARGET>",
	Short: "Resolve a dotted symbol path to the file it starts in",
	Long: `Resolve TARGET, a dotted path such as pkg.mod.Class.method, against the
Python search path and report the unit it belongs to, the file symbol lookup
starts in, and the segments left to resolve inside that file.

The search path defaults to the interpreter's sys.path. Use --append-path to
put directories in front of it, or --substitute-path to replace it.

Examples:
  pycalls call-diagram pkg.mod.Class.method
  pycalls call-diagram -a src:lib pkg.sub.helper.run
  pycalls call-diagram -s /app --format json pkg.mod.func
  pycalls call-diagram -r 2 pkg.mod.func
  pycalls call-diagram --list-symbols pkg.mod.func`,
	Args: cobra.ExactArgs(1),
	Run:  runCallDiagram,
}

func init() {
	callDiagramCmd.Flags().IntVarP(&cdForward, "forward", "f", 0, "Levels of callees to walk")
	callDiagramCmd.Flags().IntVarP(&cdBackward, "backward", "b", 0, "Levels of callers to walk")
	callDiagramCmd.Flags().IntVarP(&cdRadius, "radius", "r", 0, "Levels to walk in both directions")
	callDiagramCmd.Flags().StringVarP(&cdAppendPath, "append-path", "a", "",
		"Directories (OS path list) searched before the default path")
	callDiagramCmd.Flags().StringVarP(&cdSubstitutePath, "substitute-path", "s", "",
		"Directories (OS path list) searched instead of the default path")
	callDiagramCmd.Flags().StringVar(&cdPython, "python", "", "Interpreter to query for the default path")
	callDiagramCmd.Flags().BoolVar(&cdNoOutline, "no-outline", false, "Skip locating the symbol inside the starting file")
	callDiagramCmd.Flags().BoolVar(&cdListSymbols, "list-symbols", false, "Also list every class and function in the starting file")
	callDiagramCmd.Flags().StringVar(&cdFormat, "format", "human", "Output format (human, json, yaml)")
	callDiagramCmd.MarkFlagsMutuallyExclusive("append-path", "substitute-path")
	callDiagramCmd.MarkFlagsMutuallyExclusive("no-outline", "list-symbols")
	rootCmd.AddCommand(callDiagramCmd)
}

// CallDiagramResponse is the call-diagram command output
type CallDiagramResponse struct {
	Version           string          `json:"version" yaml:"version"`
	ProjectRoot       string          `json:"projectRoot,omitempty" yaml:"projectRoot,omitempty"`
	DefaultPathSource string          `json:"defaultPathSource,omitempty" yaml:"defaultPathSource,omitempty"`
	Result            *diagram.Result `json:"result" yaml:"result"`
}

// callDiagramOptions are the call-diagram inputs taken from flags
type callDiagramOptions struct {
	Target         string
	AppendPath     string
	SubstitutePath string
	Forward        int
	Backward       int
	Radius         int
	NoOutline      bool
	ListSymbols    bool
}

func runCallDiagram(cmd *cobra.Command, args []string) {
	start := time.Now()
	cwd := mustGetWorkingDir()
	target := args[0]

	format := OutputFormat(cdFormat)
	if !validFormat(cdFormat) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (want human, json or yaml)\n", cdFormat)
		os.Exit(exitUsage)
	}

	env, err := loadEnvironment(cwd)
	if err != nil {
		os.Exit(reportError(err, format, target))
	}
	if cdPython != "" {
		env.cfg.Python.Interpreter = cdPython
		env.cfg.Python.UseInterpreter = true
	}
	if !cmd.Flags().Changed("format") && validFormat(env.cfg.Output.Format) {
		format = OutputFormat(env.cfg.Output.Format)
	}

	logger, closeLog, err := newLogger(os.Stderr, env.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	if err := env.validate(); err != nil {
		closeLog()
		os.Exit(reportError(err, format, target))
	}

	resp, err := callDiagram(newContext(), env, callDiagramOptions{
		Target:         target,
		AppendPath:     cdAppendPath,
		SubstitutePath: cdSubstitutePath,
		Forward:        cdForward,
		Backward:       cdBackward,
		Radius:         cdRadius,
		NoOutline:      cdNoOutline,
		ListSymbols:    cdListSymbols,
	}, logger)
	if err != nil {
		logger.Debug("Call diagram failed", "code", errors.CodeOf(err), "error", err.Error())
		closeLog()
		os.Exit(reportError(err, format, target))
	}

	output, err := FormatResponse(resp, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		closeLog()
		os.Exit(exitResolution)
	}
	fmt.Println(output)

	logger.Debug("Call diagram completed",
		"target", target,
		"duration", time.Since(start).Milliseconds(),
	)
	closeLog()
}

// callDiagram runs the resolution pipeline for opts in env.
func callDiagram(ctx context.Context, env *environment, opts callDiagramOptions, logger *slog.Logger) (*CallDiagramResponse, error) {
	resp := &CallDiagramResponse{Version: version.Version}
	if env.project != nil {
		resp.ProjectRoot = env.project.Root
	}

	// A substituted path never consults the default one
	var defaultPath []string
	if opts.SubstitutePath == "" {
		defaultPath, resp.DefaultPathSource = env.defaultSearchPath(ctx, logger)
	}

	var outliner diagram.Outliner
	if env.cfg.Outline.Enabled && !opts.NoOutline && symbols.Available() {
		outliner = symbols.NewOutliner()
	}

	engine := diagram.NewEngine(env.newFinder(logger), env.newLocator(), outliner, logger)
	result, err := engine.Run(ctx, diagram.Request{
		Target:         opts.Target,
		DefaultPath:    defaultPath,
		AppendPath:     opts.AppendPath,
		SubstitutePath: opts.SubstitutePath,
		Forward:        opts.Forward,
		Backward:       opts.Backward,
		Radius:         opts.Radius,
		ListSymbols:    opts.ListSymbols,
	})
	if err != nil {
		return nil, err
	}
	resp.Result = result
	return resp, nil
}
