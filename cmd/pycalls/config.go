package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pycalls/internal/config"
)

var (
	configFormat   string
	configShowDiff bool
	configForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pycalls configuration",
	Long:  "View and manage pycalls configuration stored in .pycalls/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the current pycalls configuration, after environment overrides.

Examples:
  pycalls config show                # Pretty-print current config
  pycalls config show --format json  # Raw JSON output
  pycalls config show --diff         # Only show non-default values`,
	Run: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Long:  "Display all supported pycalls environment variable overrides",
	Run:   runConfigEnv,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  "Create .pycalls/config.json in the current directory with default values",
	Run:   runConfigInit,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json, yaml)")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string                 `json:"configPath,omitempty" yaml:"configPath,omitempty"`
	UsedDefaults bool                   `json:"usedDefaults" yaml:"usedDefaults"`
	EnvOverrides []config.EnvOverride   `json:"envOverrides,omitempty" yaml:"envOverrides,omitempty"`
	Config       map[string]interface{} `json:"config" yaml:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) {
	root := mustGetWorkingDir()

	result, err := config.LoadConfigWithDetails(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitUsage)
	}

	switch OutputFormat(configFormat) {
	case FormatJSON, FormatYAML:
		resp, err := buildConfigShowResponse(result, configShowDiff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitResolution)
		}
		output, err := FormatResponse(resp, OutputFormat(configFormat))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(exitResolution)
		}
		fmt.Println(output)
	case FormatHuman:
		fmt.Print(formatConfigHuman(result, configShowDiff))
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q\n", configFormat)
		os.Exit(exitUsage)
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func buildConfigShowResponse(result *config.LoadResult, diffOnly bool) (*ConfigShowResponse, error) {
	configMap, err := toMap(result.Config)
	if err != nil {
		return nil, err
	}

	if diffOnly {
		defaultMap, err := toMap(config.DefaultConfig())
		if err != nil {
			return nil, err
		}
		configMap = computeDiff(configMap, defaultMap)
	}

	return &ConfigShowResponse{
		ConfigPath:   result.ConfigPath,
		UsedDefaults: result.UsedDefaults,
		EnvOverrides: result.EnvOverrides,
		Config:       configMap,
	}, nil
}

// toMap round-trips v through JSON so nested sections become maps
func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return m, nil
}

func formatConfigHuman(result *config.LoadResult, diffOnly bool) string {
	var b strings.Builder

	b.WriteString("pycalls Configuration\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")

	if result.UsedDefaults {
		b.WriteString("Source: defaults (no config file found)\n")
	} else if result.ConfigPath != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", result.ConfigPath))
	}

	if len(result.EnvOverrides) > 0 {
		b.WriteString("\nEnvironment Overrides:\n")
		for _, ov := range result.EnvOverrides {
			b.WriteString(fmt.Sprintf("  %s=%s → %s\n", ov.EnvVar, ov.FromValue, ov.Path))
		}
	}
	b.WriteString("\n")

	cfg := result.Config
	defaults := config.DefaultConfig()

	if diffOnly {
		b.WriteString("Modified Settings (differs from defaults):\n\n")
		diffs := configDiffLines(cfg, defaults)
		if len(diffs) == 0 {
			b.WriteString("  (no modifications - using all defaults)\n")
		}
		for _, d := range diffs {
			b.WriteString("  " + d + "\n")
		}
	} else {
		writeSetting(&b, "version", cfg.Version, defaults.Version)

		b.WriteString("\npython:\n")
		writeSetting(&b, "  interpreter", cfg.Python.Interpreter, defaults.Python.Interpreter)
		writeSetting(&b, "  timeoutMs", cfg.Python.TimeoutMs, defaults.Python.TimeoutMs)
		writeSetting(&b, "  useInterpreter", cfg.Python.UseInterpreter, defaults.Python.UseInterpreter)

		b.WriteString("\nfinder:\n")
		writeSetting(&b, "  suffixes", strings.Join(cfg.Finder.Suffixes, ","), strings.Join(defaults.Finder.Suffixes, ","))
		writeSetting(&b, "  containerFile", cfg.Finder.ContainerFile, defaults.Finder.ContainerFile)

		b.WriteString("\noutline:\n")
		writeSetting(&b, "  enabled", cfg.Outline.Enabled, defaults.Outline.Enabled)

		b.WriteString("\noutput:\n")
		writeSetting(&b, "  format", cfg.Output.Format, defaults.Output.Format)

		b.WriteString("\nlogging:\n")
		writeSetting(&b, "  level", cfg.Logging.Level, defaults.Logging.Level)
		writeSetting(&b, "  format", cfg.Logging.Format, defaults.Logging.Format)
		writeSetting(&b, "  file", valueOrDefault(cfg.Logging.File, "(none)"), "(none)")
	}

	b.WriteString("\nUse 'pycalls config show --format json' for full configuration\n")
	b.WriteString("Use 'pycalls config env' to see supported environment variables\n")
	return b.String()
}

func writeSetting(b *strings.Builder, name string, value, defaultValue interface{}) {
	modified := ""
	if !isEqual(value, defaultValue) {
		modified = fmt.Sprintf(" (default: %v)", defaultValue)
	}
	b.WriteString(fmt.Sprintf("%s: %v%s\n", name, value, modified))
}

func configDiffLines(cfg, defaults *config.Config) []string {
	diffs := []string{}
	add := func(key string, value, defaultValue interface{}) {
		if !isEqual(value, defaultValue) {
			diffs = append(diffs, fmt.Sprintf("%s: %v (default: %v)", key, value, defaultValue))
		}
	}

	add("version", cfg.Version, defaults.Version)
	add("python.interpreter", cfg.Python.Interpreter, defaults.Python.Interpreter)
	add("python.timeoutMs", cfg.Python.TimeoutMs, defaults.Python.TimeoutMs)
	add("python.useInterpreter", cfg.Python.UseInterpreter, defaults.Python.UseInterpreter)
	add("finder.suffixes", cfg.Finder.Suffixes, defaults.Finder.Suffixes)
	add("finder.containerFile", cfg.Finder.ContainerFile, defaults.Finder.ContainerFile)
	add("outline.enabled", cfg.Outline.Enabled, defaults.Outline.Enabled)
	add("output.format", cfg.Output.Format, defaults.Output.Format)
	add("logging.level", cfg.Logging.Level, defaults.Logging.Level)
	add("logging.format", cfg.Logging.Format, defaults.Logging.Format)
	add("logging.file", cfg.Logging.File, defaults.Logging.File)

	return diffs
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	fmt.Print(formatConfigEnv())
}

func formatConfigEnv() string {
	var b strings.Builder

	b.WriteString("Supported pycalls Environment Variables\n")
	b.WriteString(strings.Repeat("─", 50) + "\n\n")

	b.WriteString("General:\n")
	b.WriteString(fmt.Sprintf("  %-34s %s (%s)\n", config.ConfigPathEnvVar, "Path to config file", "string"))
	b.WriteString(fmt.Sprintf("  %-34s %s (%s)\n", "PYTHONPATH", "Fallback search path entries", "list"))
	b.WriteString("\n")

	section := ""
	for _, ev := range config.EnvVars() {
		name := strings.SplitN(ev.Key, ".", 2)[0]
		if name != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = name
			b.WriteString(strings.ToUpper(name[:1]) + name[1:] + ":\n")
		}
		b.WriteString(fmt.Sprintf("  %-34s %s (%s)\n", ev.Name, ev.Desc, ev.VarType))
	}

	b.WriteString("\nExample usage:\n")
	b.WriteString("  PYCALLS_LOGGING_LEVEL=debug pycalls call-diagram pkg.mod.func\n")
	b.WriteString("  PYCALLS_PYTHON_INTERPRETER=.venv/bin/python pycalls paths\n")
	b.WriteString("  PYCALLS_CONFIG_PATH=/etc/pycalls/config.json pycalls config show\n")
	return b.String()
}

func runConfigInit(cmd *cobra.Command, args []string) {
	root := mustGetWorkingDir()
	path := config.Path(root)

	if _, err := os.Stat(path); err == nil && !configForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		os.Exit(exitUsage)
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(exitResolution)
	}
	fmt.Printf("Wrote %s\n", path)
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func computeDiff(current, defaults map[string]interface{}) map[string]interface{} {
	diff := make(map[string]interface{})
	computeDiffRecursive(current, defaults, diff)
	return diff
}

func computeDiffRecursive(current, defaults map[string]interface{}, diff map[string]interface{}) {
	for key, currentVal := range current {
		defaultVal, exists := defaults[key]

		if !exists {
			diff[key] = currentVal
			continue
		}

		currentMap, currentIsMap := currentVal.(map[string]interface{})
		defaultMap, defaultIsMap := defaultVal.(map[string]interface{})

		if currentIsMap && defaultIsMap {
			nestedDiff := make(map[string]interface{})
			computeDiffRecursive(currentMap, defaultMap, nestedDiff)
			if len(nestedDiff) > 0 {
				diff[key] = nestedDiff
			}
		} else if fmt.Sprintf("%v", currentVal) != fmt.Sprintf("%v", defaultVal) {
			diff[key] = currentVal
		}
	}
}
