package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pycalls/internal/searchpath"
	"pycalls/internal/version"
)

var (
	pathsAppendPath     string
	pathsSubstitutePath string
	pathsPython         string
	pathsFormat         string
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the effective search path",
	Long: `Print the directories call-diagram would search, in order, with where
each entry came from: the project, the default path, --append-path or
--substitute-path.

Examples:
  pycalls paths
  pycalls paths -a vendor --format json`,
	Args: cobra.NoArgs,
	Run:  runPaths,
}

func init() {
	pathsCmd.Flags().StringVarP(&pathsAppendPath, "append-path", "a", "",
		"Directories (OS path list) searched before the default path")
	pathsCmd.Flags().StringVarP(&pathsSubstitutePath, "substitute-path", "s", "",
		"Directories (OS path list) searched instead of the default path")
	pathsCmd.Flags().StringVar(&pathsPython, "python", "", "Interpreter to query for the default path")
	pathsCmd.Flags().StringVar(&pathsFormat, "format", "human", "Output format (human, json, yaml)")
	pathsCmd.MarkFlagsMutuallyExclusive("append-path", "substitute-path")
	rootCmd.AddCommand(pathsCmd)
}

// Entry origins
const (
	originProject    = "project"
	originDefault    = "default"
	originAppend     = "append"
	originSubstitute = "substitute"
)

// PathEntry is one search path directory
type PathEntry struct {
	Dir    string `json:"dir" yaml:"dir"`
	Origin string `json:"origin" yaml:"origin"`
	Exists bool   `json:"exists" yaml:"exists"`
}

// PathsResponse is the paths command output
type PathsResponse struct {
	Version           string          `json:"version" yaml:"version"`
	Mode              searchpath.Mode `json:"mode" yaml:"mode"`
	DefaultPathSource string          `json:"defaultPathSource,omitempty" yaml:"defaultPathSource,omitempty"`
	ProjectRoot       string          `json:"projectRoot,omitempty" yaml:"projectRoot,omitempty"`
	Entries           []PathEntry     `json:"entries" yaml:"entries"`
}

func runPaths(cmd *cobra.Command, args []string) {
	cwd := mustGetWorkingDir()

	format := OutputFormat(pathsFormat)
	if !validFormat(pathsFormat) {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (want human, json or yaml)\n", pathsFormat)
		os.Exit(exitUsage)
	}

	env, err := loadEnvironment(cwd)
	if err != nil {
		os.Exit(reportError(err, format, ""))
	}
	if pathsPython != "" {
		env.cfg.Python.Interpreter = pathsPython
		env.cfg.Python.UseInterpreter = true
	}

	logger, closeLog, err := newLogger(os.Stderr, env.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
	defer closeLog()

	resp := describeSearchPath(newContext(), env, pathsAppendPath, pathsSubstitutePath, logger)

	output, err := FormatResponse(resp, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		return
	}
	fmt.Println(output)
}

// describeSearchPath builds the search path the way call-diagram does and
// labels each entry with its origin.
func describeSearchPath(ctx context.Context, env *environment, appendPath, substitutePath string, logger *slog.Logger) *PathsResponse {
	resp := &PathsResponse{Version: version.Version}
	if env.project != nil {
		resp.ProjectRoot = env.project.Root
	}

	var defaultPath []string
	if substitutePath == "" {
		defaultPath, resp.DefaultPathSource = env.defaultSearchPath(ctx, logger)
	}

	path, mode := searchpath.BuildWithMode(defaultPath, appendPath, substitutePath)
	resp.Mode = mode

	// Entries are compared as Build emits them: absolute in append mode,
	// and project entries are absolute already.
	appended := searchpath.Build(nil, appendPath, "")
	fromProject := searchpath.SearchPath(env.project.SearchPath())

	resp.Entries = make([]PathEntry, 0, len(path))
	for _, dir := range path {
		origin := originDefault
		switch {
		case mode == searchpath.ModeSubstitute:
			origin = originSubstitute
		case appended.Contains(dir):
			origin = originAppend
		case fromProject.Contains(dir):
			origin = originProject
		}

		info, err := os.Stat(dir)
		resp.Entries = append(resp.Entries, PathEntry{
			Dir:    dir,
			Origin: origin,
			Exists: err == nil && info.IsDir(),
		})
	}

	return resp
}
