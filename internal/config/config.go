// Package config loads ndbuf CLI configuration.
//
// Configuration comes from a single YAML file named by the --config flag
// or, failing that, the NDBUF_CONFIG environment variable. There is no
// discovery. With neither set, defaults are used.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "NDBUF_CONFIG"

// Config is the CLI configuration.
type Config struct {
	// Datasets configures dataset downloads.
	Datasets DatasetsConfig `yaml:"datasets"`

	// Preview configures how many elements String renders.
	Preview PreviewConfig `yaml:"preview"`

	// Snapshot configures .ndb output.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Log configures the CLI logger.
	Log LogConfig `yaml:"log"`
}

// DatasetsConfig configures dataset downloads.
type DatasetsConfig struct {
	// BaseURL is the directory URL holding the MNIST files.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each HTTP request. Default: 5m
	Timeout time.Duration `yaml:"timeout"`
}

// PreviewConfig configures element previews.
type PreviewConfig struct {
	// MaxElements is the number of leading elements shown. Default: 10
	MaxElements int `yaml:"max_elements"`
}

// SnapshotConfig configures .ndb output.
type SnapshotConfig struct {
	// Compress enables LZ4 payload compression. Default: true
	Compress bool `yaml:"compress"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Datasets: DatasetsConfig{
			BaseURL: "https://raw.githubusercontent.com/fgnt/mnist/master/",
			Timeout: 5 * time.Minute,
		},
		Preview:  PreviewConfig{MaxElements: 10},
		Snapshot: SnapshotConfig{Compress: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the file at path, or at $NDBUF_CONFIG when path is empty.
// Values absent from the file keep their defaults. The result is
// validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	//nolint:gosec // G304: path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	if c.Datasets.BaseURL == "" {
		errs = append(errs, errors.New("datasets.base_url is required"))
	} else if u, err := url.Parse(c.Datasets.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("datasets.base_url must be an http(s) URL, got %q", c.Datasets.BaseURL))
	}

	if c.Datasets.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("datasets.timeout must be positive, got %s", c.Datasets.Timeout))
	}

	if c.Preview.MaxElements < 0 {
		errs = append(errs, fmt.Errorf("preview.max_elements must not be negative, got %d", c.Preview.MaxElements))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", s)
	}
}
