package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const (
	// CurrentVersion is the config schema version written by Save
	CurrentVersion = 1

	// Dir is the per-project configuration directory
	Dir = ".pycalls"

	// FileName is the configuration file inside Dir
	FileName = "config.json"

	// ConfigPathEnvVar overrides the location of the configuration file
	ConfigPathEnvVar = "PYCALLS_CONFIG_PATH"
)

// Config represents the complete pycalls configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Python  PythonConfig  `json:"python" mapstructure:"python"`
	Finder  FinderConfig  `json:"finder" mapstructure:"finder"`
	Outline OutlineConfig `json:"outline" mapstructure:"outline"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// PythonConfig controls how the default search path is obtained
type PythonConfig struct {
	Interpreter    string `json:"interpreter" mapstructure:"interpreter"`
	TimeoutMs      int    `json:"timeoutMs" mapstructure:"timeoutMs"`
	UseInterpreter bool   `json:"useInterpreter" mapstructure:"useInterpreter"`
}

// FinderConfig controls unit lookup on disk
type FinderConfig struct {
	Suffixes      []string `json:"suffixes" mapstructure:"suffixes"`
	ContainerFile string   `json:"containerFile" mapstructure:"containerFile"`
}

// OutlineConfig controls the symbol outline step
type OutlineConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// OutputConfig contains result output settings
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Python: PythonConfig{
			Interpreter:    "python3",
			TimeoutMs:      5000,
			UseInterpreter: true,
		},
		Finder: FinderConfig{
			Suffixes:      []string{".py"},
			ContainerFile: "__init__.py",
		},
		Outline: OutlineConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format: "human",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// EnvVar documents one supported environment override
type EnvVar struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Desc    string `json:"description"`
	VarType string `json:"type"`
}

// envVars lists every config key that can be overridden from the environment
var envVars = []EnvVar{
	{"PYCALLS_PYTHON_INTERPRETER", "python.interpreter", "Interpreter queried for the default search path", "string"},
	{"PYCALLS_PYTHON_TIMEOUT_MS", "python.timeoutMs", "Interpreter query timeout", "int"},
	{"PYCALLS_PYTHON_USE_INTERPRETER", "python.useInterpreter", "Query the interpreter at all", "bool"},
	{"PYCALLS_FINDER_SUFFIXES", "finder.suffixes", "Source suffixes, comma-separated", "list"},
	{"PYCALLS_FINDER_CONTAINER_FILE", "finder.containerFile", "Package container file name", "string"},
	{"PYCALLS_OUTLINE_ENABLED", "outline.enabled", "Locate the symbol inside the starting file", "bool"},
	{"PYCALLS_OUTPUT_FORMAT", "output.format", "Result format (human, json, yaml)", "string"},
	{"PYCALLS_LOGGING_LEVEL", "logging.level", "Log level (debug, info, warn, error)", "string"},
	{"PYCALLS_LOGGING_FORMAT", "logging.format", "Log format (human, json)", "string"},
	{"PYCALLS_LOGGING_FILE", "logging.file", "Also append logs to this file", "string"},
}

// GetSupportedEnvVars returns the names of all supported environment variables
func GetSupportedEnvVars() []string {
	names := make([]string, 0, len(envVars)+1)
	names = append(names, ConfigPathEnvVar)
	for _, ev := range envVars {
		names = append(names, ev.Name)
	}
	sort.Strings(names)
	return names
}

// EnvVars returns the documented environment overrides
func EnvVars() []EnvVar {
	out := make([]EnvVar, len(envVars))
	copy(out, envVars)
	return out
}

// EnvOverride records an environment variable that changed a config value
type EnvOverride struct {
	EnvVar    string `json:"envVar"`
	Path      string `json:"path"`
	FromValue string `json:"value"`
}

// LoadResult is a loaded configuration plus where it came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads configuration from .pycalls/config.json under root
func LoadConfig(root string) (*Config, error) {
	result, err := LoadConfigWithDetails(root)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports the file used and
// the environment overrides applied.
// Precedence: environment > config file > defaults.
func LoadConfigWithDetails(root string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	for _, ev := range envVars {
		if err := v.BindEnv(ev.Key, ev.Name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", ev.Name, err)
		}
	}

	result := &LoadResult{}

	if explicit := os.Getenv(ConfigPathEnvVar); explicit != "" {
		v.SetConfigFile(explicit)
		v.SetConfigType("json")
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(root, Dir))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	result.Config = &cfg

	for _, ev := range envVars {
		if val, ok := os.LookupEnv(ev.Name); ok {
			result.EnvOverrides = append(result.EnvOverrides, EnvOverride{
				EnvVar:    ev.Name,
				Path:      ev.Key,
				FromValue: val,
			})
		}
	}

	return result, nil
}

// setDefaults registers every field of cfg so viper knows all keys
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("python.interpreter", cfg.Python.Interpreter)
	v.SetDefault("python.timeoutMs", cfg.Python.TimeoutMs)
	v.SetDefault("python.useInterpreter", cfg.Python.UseInterpreter)
	v.SetDefault("finder.suffixes", cfg.Finder.Suffixes)
	v.SetDefault("finder.containerFile", cfg.Finder.ContainerFile)
	v.SetDefault("outline.enabled", cfg.Outline.Enabled)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// Path returns the config file location for root
func Path(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// Save writes the configuration to .pycalls/config.json
func (c *Config) Save(root string) error {
	configPath := Path(root)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(configPath, append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if c.Python.TimeoutMs <= 0 {
		return &ConfigError{Field: "python.timeoutMs", Message: "must be positive"}
	}
	if c.Python.UseInterpreter && c.Python.Interpreter == "" {
		return &ConfigError{Field: "python.interpreter", Message: "must be set when python.useInterpreter is true"}
	}
	if len(c.Finder.Suffixes) == 0 {
		return &ConfigError{Field: "finder.suffixes", Message: "at least one suffix is required"}
	}
	for _, s := range c.Finder.Suffixes {
		if !strings.HasPrefix(s, ".") || len(s) < 2 {
			return &ConfigError{Field: "finder.suffixes", Message: fmt.Sprintf("suffix %q must start with '.'", s)}
		}
	}
	if c.Finder.ContainerFile == "" {
		return &ConfigError{Field: "finder.containerFile", Message: "must not be empty"}
	}
	if !hasAnySuffix(c.Finder.ContainerFile, c.Finder.Suffixes) {
		return &ConfigError{Field: "finder.containerFile", Message: "must end with one of finder.suffixes"}
	}
	switch c.Output.Format {
	case "human", "json", "yaml":
	default:
		return &ConfigError{Field: "output.format", Message: fmt.Sprintf("unknown format %q", c.Output.Format)}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
