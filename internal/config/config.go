// Package config handles YAML configuration loading and validation
// for the eftools dispatcher.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cesarempathy/ef-tools/internal/eftool"
)

// EnvConfigPath names the environment variable pointing at a config file
const EnvConfigPath = "EFTOOLS_CONFIG"

// DefaultFileName is looked up in the working directory when EnvConfigPath is unset
const DefaultFileName = "eftools.yaml"

// ToolConfig describes the external migration tool
type ToolConfig struct {
	Binary string   `yaml:"binary"`
	Args   []string `yaml:"args"`
}

// LogConfig controls the diagnostic logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the YAML configuration file structure
type Config struct {
	Tool        ToolConfig        `yaml:"tool"`
	WorkDir     string            `yaml:"workDir,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
	DryRun      bool              `yaml:"dryRun"`
	Interactive bool              `yaml:"interactive"`
	Log         LogConfig         `yaml:"log"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Tool: ToolConfig{
			Binary: "dotnet",
			Args:   []string{"ef"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the environment or working directory
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Resolve finds the config to use. It returns the path it loaded, or ""
// when defaults are in effect.
func Resolve() (*Config, string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		cfg, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	if _, err := os.Stat(DefaultFileName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), "", nil
		}
		return nil, "", fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg, err := LoadFromFile(DefaultFileName)
	if err != nil {
		return nil, "", err
	}
	return cfg, DefaultFileName, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Tool.Binary == "" {
		return fmt.Errorf("tool.binary is required")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	if c.WorkDir != "" {
		info, err := os.Stat(c.WorkDir)
		if err != nil {
			return fmt.Errorf("workDir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("workDir %s is not a directory", c.WorkDir)
		}
	}
	return nil
}

// RunnerConfig converts the file config into the runner's settings
func (c *Config) RunnerConfig() eftool.Config {
	return eftool.Config{
		Binary: c.Tool.Binary,
		Args:   c.Tool.Args,
		Dir:    c.WorkDir,
		Env:    c.Env,
		DryRun: c.DryRun,
	}
}

// WriteExampleConfig writes an example configuration file
func WriteExampleConfig(path string) error {
	example := DefaultConfig()
	example.Env = map[string]string{"ASPNETCORE_ENVIRONMENT": "Development"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	header := `# eftools configuration
#
# tool.binary and tool.args form the prefix of every external command,
# e.g. "dotnet ef migrations -p <project> add <name>".
#
# Set dryRun to print commands instead of running them, or interactive
# to follow progress in a terminal UI.

# workDir: ./src  # Optional: directory the tool runs in (defaults to the current one)

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0600); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}
