package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is used when neither the file nor the environment sets one
	DefaultLogLevel = "info"

	// DefaultLogFormat writes human readable lines to stderr
	DefaultLogFormat = "text"

	// DefaultFormulaCacheSize bounds the number of parsed formulas kept in memory
	DefaultFormulaCacheSize = 1024
)

// Config holds all application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Sheet   SheetConfig   `yaml:"sheet"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// SheetConfig holds settings for the sheets a session creates
type SheetConfig struct {
	FormulaCacheSize int `yaml:"formula_cache_size"`
}

// MetricsConfig holds the prometheus exposure settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // host:port served by promhttp
}

// Default returns the configuration used when nothing else is given
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Sheet: SheetConfig{
			FormulaCacheSize: DefaultFormulaCacheSize,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file at path and
// SPREADSHEET_* environment variables, in that order of precedence.
// an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := decode(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("SPREADSHEET_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SPREADSHEET_LOG_FORMAT", c.Log.Format)
	c.Sheet.FormulaCacheSize = getEnvInt("SPREADSHEET_FORMULA_CACHE_SIZE", c.Sheet.FormulaCacheSize)

	// an address implies the metrics endpoint is wanted
	if addr := getEnv("SPREADSHEET_METRICS_ADDR", ""); addr != "" {
		c.Metrics.Addr = addr
		c.Metrics.Enabled = true
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("invalid log level: %q (must be trace, debug, info, warn, or error)", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("invalid log format: %q (must be text or json)", c.Log.Format)
	}

	if c.Sheet.FormulaCacheSize <= 0 {
		return errors.Errorf("formula cache size must be positive, got %d", c.Sheet.FormulaCacheSize)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics address is required when metrics are enabled")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
