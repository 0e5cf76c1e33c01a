package app

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/physiolab/vitals/internal/features"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Input    InputConfig   `yaml:"input"`
	Features FeatureConfig `yaml:"features"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// InputConfig points at the recording to analyze
type InputConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	Subject       string `yaml:"subject"`
}

// FeatureConfig selects the extractors to run and their window
type FeatureConfig struct {
	WindowSeconds float64 `yaml:"windowSeconds"`
	Rolling       bool    `yaml:"rolling"`
	TimeDomain    bool    `yaml:"timeDomain"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

func NewConfig() *Config {
	return &Config{
		Features: FeatureConfig{
			WindowSeconds: features.DefaultWindowSeconds,
			Rolling:       true,
			TimeDomain:    true,
		},
	}
}

// NewConfigFromFile loads the configuration from a YAML file, keeping
// defaults for fields the file does not set.
func NewConfigFromFile(path string) (*Config, error) {
	c := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return c, nil
}

// NewConfigFromCLI builds the configuration from command line flags,
// optionally starting from a YAML config file. Flags set on the command
// line override the file.
func NewConfigFromCLI() (*Config, error) {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to a YAML config file")

	var data, subject, db, logLevel string
	var window float64
	flag.StringVar(&data, "data", "", "Directory containing <subject>.csv recordings")
	flag.StringVar(&subject, "subject", "", "Subject ID to analyze")
	flag.Float64Var(&window, "window", features.DefaultWindowSeconds, "Rolling window length in seconds")
	flag.StringVar(&db, "db", "", "Path to the feature database file")
	flag.StringVar(&logLevel, "log-level", "", "Log level. [debug, info, warn, error]")
	flag.Parse()

	c := NewConfig()
	if configFile != "" {
		loaded, err := NewConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			c.Input.DataDirectory = data
		case "subject":
			c.Input.Subject = subject
		case "window":
			c.Features.WindowSeconds = window
		case "db":
			c.Storage.DBPath = db
		case "log-level":
			c.Settings.LogLevel = logLevel
		}
	})

	if err := c.Validate(); err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Input.DataDirectory == "" {
		return errors.New("data directory is required")
	}
	if c.Input.Subject == "" {
		return errors.New("subject is required")
	}
	if c.Features.WindowSeconds <= 0 {
		return fmt.Errorf("invalid window length: %g seconds", c.Features.WindowSeconds)
	}
	if !c.Features.Rolling && !c.Features.TimeDomain {
		return errors.New("at least one extractor must be enabled")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db path is required")
	}
	return nil
}

// LogLevel maps the configured log level name to a slog level, defaulting
// to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Settings.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
