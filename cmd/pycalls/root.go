package main

import (
	"github.com/spf13/cobra"

	"pycalls/internal/symbols"
	"pycalls/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
	// logFileFlag is the CLI --log-file flag value
	logFileFlag string
	verbosity   int
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "pycalls",
	Short: "pycalls - locate the code behind a Python call diagram",
	Long: `pycalls resolves a dotted Python symbol path such as pkg.mod.Class.method
to the module that defines it, using the same search path rules as the
interpreter, and reports the file where symbol lookup starts.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate(version.Full(symbols.Available()) + "\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (overrides -v/-q and config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "",
		"Also append logs to this file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
