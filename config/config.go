// Package config loads carprep settings from built-in defaults, an optional
// YAML file and CARPREP_* environment variables, in that order of precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
)

// EnvPrefix is the prefix of every environment override,
// e.g. CARPREP_ARTIFACTS_PREPROCESSOR_PATH.
const EnvPrefix = "CARPREP"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Report    ReportConfig    `yaml:"report"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig contains input and output locations of the prepare command
type DataConfig struct {
	TrainPath string `yaml:"train_path" split_words:"true"`
	TestPath  string `yaml:"test_path" split_words:"true"`
	OutputDir string `yaml:"output_dir" split_words:"true"`
}

// ArtifactsConfig contains the location of the fitted transformer
type ArtifactsConfig struct {
	PreprocessorPath string `yaml:"preprocessor_path" split_words:"true"`
}

// ReportConfig contains histogram report settings. An empty PlotDir disables the report.
type ReportConfig struct {
	PlotDir string `yaml:"plot_dir" split_words:"true"`
	Bins    int    `yaml:"bins"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TrainPath: filepath.Join("artifacts", "train.csv"),
			TestPath:  filepath.Join("artifacts", "test.csv"),
			OutputDir: "artifacts",
		},
		Artifacts: ArtifactsConfig{
			PreprocessorPath: filepath.Join("artifacts", "preprocessor.gob"),
		},
		Report: ReportConfig{
			Bins: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used; a named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config from env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys missing from the file
// keep their current value.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Artifacts.PreprocessorPath == "" {
		return errors.NewValidationError("artifacts.preprocessor_path", "must not be empty", c.Artifacts.PreprocessorPath)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewValidationError("logging.level", "must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return errors.NewValidationError("logging.format", "must be json or console", c.Logging.Format)
	}
	if c.Report.Bins <= 0 {
		return errors.NewValidationError("report.bins", "must be positive", c.Report.Bins)
	}
	return nil
}

// LogLevel returns the validated logging level.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Logging.Level)
	return level
}
