package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.ConfigPath)
	assert.Equal(t, -1, cfg.Threads)
	assert.Equal(t, 10000, cfg.Jobs)
	assert.Equal(t, 4, cfg.Producers)
	assert.Zero(t, cfg.Rate)
	assert.Equal(t, -1, cfg.MetricsPort)
	assert.NoError(t, validateFlags(cfg))
}

func TestParseFlags_Values(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-threads", "8",
		"-jobs", "50",
		"-producers", "2",
		"-rate", "100.5",
		"-work", "2ms",
		"-log-level", "debug",
		"-metrics-port", "9191",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Threads)
	assert.Equal(t, 50, cfg.Jobs)
	assert.Equal(t, 2, cfg.Producers)
	assert.InDelta(t, 100.5, cfg.Rate, 1e-9)
	assert.Equal(t, 2*time.Millisecond, cfg.Work)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9191, cfg.MetricsPort)
}

func TestParseFlags_EnvFallback(t *testing.T) {
	t.Setenv("THREADPOOL_JOBS", "77")
	t.Setenv("THREADPOOL_PRODUCERS", "3")
	t.Setenv("THREADPOOL_RATE", "not-a-number")

	cfg, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Jobs)
	assert.Equal(t, 3, cfg.Producers)
	assert.Zero(t, cfg.Rate, "unparsable values fall back to the default")
}

func TestParseFlags_Help(t *testing.T) {
	var out bytes.Buffer
	cfg, err := parseFlags([]string{"-h"}, &out)
	require.NoError(t, err)

	assert.True(t, cfg.ShowHelp)
	assert.Contains(t, out.String(), "fixed-size worker pool driver")
	assert.Contains(t, out.String(), "-producers")
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-bogus"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr bool
	}{
		{"valid", func(*CLIConfig) {}, false},
		{"negative threads", func(c *CLIConfig) { c.Threads = -2 }, true},
		{"negative jobs", func(c *CLIConfig) { c.Jobs = -1 }, true},
		{"no producers", func(c *CLIConfig) { c.Producers = 0 }, true},
		{"negative rate", func(c *CLIConfig) { c.Rate = -1 }, true},
		{"negative fail-every", func(c *CLIConfig) { c.FailEvery = -3 }, true},
		{"port too large", func(c *CLIConfig) { c.MetricsPort = 70000 }, true},
		{"version skips checks", func(c *CLIConfig) {
			c.Producers = 0
			c.ShowVersion = true
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &CLIConfig{Threads: -1, Jobs: 10, Producers: 1, MetricsPort: -1}
			tt.mutate(cfg)

			err := validateFlags(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
