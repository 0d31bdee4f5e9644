package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/aeldidi/threadpool/errors"
)

// CLIConfig holds command-line configuration. Fields left at their unset
// value (-1 or "") defer to the configuration file and THREADPOOL_*
// variables.
type CLIConfig struct {
	ConfigPath  string
	Threads     int
	Jobs        int
	Producers   int
	Rate        float64
	Work        time.Duration
	FailEvery   int
	LogLevel    string
	LogFormat   string
	MetricsPort int
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("THREADPOOL_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: THREADPOOL_CONFIG)")

	fs.IntVar(&cfg.Threads, "threads", -1,
		"Worker count, overrides pool.thread_count (env: THREADPOOL_THREAD_COUNT)")

	fs.IntVar(&cfg.Jobs, "jobs",
		getEnvInt("THREADPOOL_JOBS", 10000),
		"Number of jobs to submit (env: THREADPOOL_JOBS)")

	fs.IntVar(&cfg.Producers, "producers",
		getEnvInt("THREADPOOL_PRODUCERS", 4),
		"Concurrent submitting goroutines (env: THREADPOOL_PRODUCERS)")

	fs.Float64Var(&cfg.Rate, "rate",
		getEnvFloat("THREADPOOL_RATE", 0),
		"Submissions per second across producers, 0 for unlimited (env: THREADPOOL_RATE)")

	fs.DurationVar(&cfg.Work, "work",
		getEnvDuration("THREADPOOL_WORK", 0),
		"Time each job spends working (env: THREADPOOL_WORK)")

	fs.IntVar(&cfg.FailEvery, "fail-every",
		getEnvInt("THREADPOOL_FAIL_EVERY", 0),
		"Make every Nth job panic, 0 to disable (env: THREADPOOL_FAIL_EVERY)")

	fs.StringVar(&cfg.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (env: THREADPOOL_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format", "",
		"Log format: json, text (env: THREADPOOL_LOG_FORMAT)")

	fs.IntVar(&cfg.MetricsPort, "metrics-port", -1,
		"Serve metrics and health on this port, 0 to disable (env: THREADPOOL_METRICS_PORT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	fs.Usage = func() {
		printDetailedHelp(fs, output)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowHelp {
		fs.Usage()
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Threads < -1 {
		return fmt.Errorf("invalid thread count %d: %w", cfg.Threads, errors.ErrInvalidConfig)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("invalid job count %d: %w", cfg.Jobs, errors.ErrInvalidConfig)
	}
	if cfg.Producers < 1 {
		return fmt.Errorf("invalid producer count %d: %w", cfg.Producers, errors.ErrInvalidConfig)
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("invalid rate %g: %w", cfg.Rate, errors.ErrInvalidConfig)
	}
	if cfg.FailEvery < 0 {
		return fmt.Errorf("invalid fail-every %d: %w", cfg.FailEvery, errors.ErrInvalidConfig)
	}
	if cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d: %w", cfg.MetricsPort, errors.ErrInvalidConfig)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - fixed-size worker pool driver

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Push 100k jobs through 8 workers
  %s --threads=8 --jobs=100000

  # Rate-limited run with metrics on :9090
  %s --rate=500 --metrics-port=9090 --log-format=text

  # Run from a configuration file
  export THREADPOOL_CONFIG=/etc/threadpool/pool.yaml
  %s

Version: %s
`, appName, appName, appName, Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
