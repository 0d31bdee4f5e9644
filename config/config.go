package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aeldidi/threadpool/errors"
)

// DefaultEnvPrefix is the prefix of environment variables read by Loader
const DefaultEnvPrefix = "THREADPOOL"

// healthPath is served next to the metrics endpoint and cannot be reused
const healthPath = "/health"

// Config is the complete configuration of a pool process
type Config struct {
	Pool    PoolConfig    `json:"pool"    yaml:"pool"`
	Log     LogConfig     `json:"log"     yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// PoolConfig holds the pool's single tunable
type PoolConfig struct {
	ThreadCount int `json:"thread_count" yaml:"thread_count"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `json:"level"  yaml:"level"`  // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json, text
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port"    yaml:"port"`
	Path    string `json:"path"    yaml:"path"`
}

// Default returns the configuration used when no file or override is given
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			ThreadCount: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration and returns an invalid-class error for
// the first problem found. The upper bound on pool.thread_count is enforced
// by worker.New.
func (c *Config) Validate() error {
	if c.Pool.ThreadCount < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("pool.thread_count %d is negative: %w", c.Pool.ThreadCount, errors.ErrInvalidConfig),
			"Config", "Validate", "validate pool")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log.level %q: %w", c.Log.Level, errors.ErrInvalidConfig),
			"Config", "Validate", "validate log")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown log.format %q: %w", c.Log.Format, errors.ErrInvalidConfig),
			"Config", "Validate", "validate log")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return errors.WrapInvalid(
				fmt.Errorf("metrics.port %d out of range: %w", c.Metrics.Port, errors.ErrInvalidConfig),
				"Config", "Validate", "validate metrics")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return errors.WrapInvalid(
				fmt.Errorf("metrics.path %q must start with /: %w", c.Metrics.Path, errors.ErrInvalidConfig),
				"Config", "Validate", "validate metrics")
		}
	}

	if c.Metrics.Path == healthPath {
		return errors.WrapInvalid(
			fmt.Errorf("metrics.path %q is reserved for health: %w", c.Metrics.Path, errors.ErrInvalidConfig),
			"Config", "Validate", "validate metrics")
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// SaveToFile writes the configuration as JSON or YAML depending on the
// file extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "Config", "SaveToFile", "encode config")
	}

	return safeWriteFile(path, data)
}

// Loader handles configuration loading with layers and overrides.
// Defaults are applied first, then each file layer in order, then
// environment variables.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  DefaultEnvPrefix,
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// SetEnvPrefix changes the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	// fields absent from a layer keep their previous value
	for _, path := range l.layers {
		if err := l.decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (l *Loader) decodeFile(path string, cfg *Config) error {
	data, err := safeReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.WrapInvalid(
				fmt.Errorf("%s: %w", path, errors.ErrConfigNotFound),
				"Loader", "Load", "read config file")
		}
		return errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("read %s", path))
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		if err = validateJSONDepth(data); err == nil {
			err = json.Unmarshal(data, cfg)
		}
	}
	if err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%s: %w: %w", path, errors.ErrParsingFailed, err),
			"Loader", "Load", "parse config file")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	for _, o := range []struct {
		suffix string
		apply  func(string) error
	}{
		{"_THREAD_COUNT", intSetter(&cfg.Pool.ThreadCount)},
		{"_LOG_LEVEL", stringSetter(&cfg.Log.Level)},
		{"_LOG_FORMAT", stringSetter(&cfg.Log.Format)},
		{"_METRICS_ENABLED", boolSetter(&cfg.Metrics.Enabled)},
		{"_METRICS_PORT", intSetter(&cfg.Metrics.Port)},
		{"_METRICS_PATH", stringSetter(&cfg.Metrics.Path)},
	} {
		key := l.envPrefix + o.suffix
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		if err := validateEnvVar(key, val); err != nil {
			return errors.WrapInvalid(err, "Loader", "Load", "read environment")
		}
		if err := o.apply(val); err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("%s=%q: %w: %w", key, val, errors.ErrInvalidConfig, err),
				"Loader", "Load", "apply environment override")
		}
	}
	return nil
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
