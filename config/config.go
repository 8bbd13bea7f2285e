// Package config loads the agent's runtime settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/csvagent/core"
)

// Config holds everything the CLI needs to assemble an agent run.
type Config struct {
	// Provider selects the model backend: "openai" or "anthropic".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier. Empty means the
	// provider's default.
	Model string `yaml:"model"`
	// Timeout bounds a single model call. Zero disables the deadline.
	Timeout Duration `yaml:"timeout"`
	// MaxIterations bounds agent loop turns per run.
	MaxIterations int `yaml:"max_iterations"`
	// MaxRetries bounds recovery attempts per turn after a model or parse
	// failure.
	MaxRetries int `yaml:"max_retries"`
	// Goals override the built-in goal set when non-empty.
	Goals []core.Goal `yaml:"goals"`
	// InputDir is where the file actions look for raw CSV files by default.
	InputDir string `yaml:"input_dir"`
	// OutputDir receives cleaned files and the consolidated report.
	OutputDir string `yaml:"output_dir"`

	Logging LoggingConfig `yaml:"logging"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Provider:      "openai",
		Timeout:       Duration(30 * time.Second),
		MaxIterations: 10,
		MaxRetries:    2,
		InputDir:      ".",
		OutputDir:     "cleaned_csvs",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path and overlays it on Default. A missing optional file is not
// an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the agent cannot run with.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout.Std())
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}
