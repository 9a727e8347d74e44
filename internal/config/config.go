// Package config resolves run settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvWorkers       = "MRTOOLS_WORKERS"
	EnvLoD           = "MRTOOLS_LOD"
	EnvSubtractHoles = "MRTOOLS_SUBTRACT_HOLES"
	EnvMetricsFile   = "MRTOOLS_METRICS_FILE"
)

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Config holds the settings of a run.
type Config struct {
	Workers       int
	LoD           string
	SubtractHoles bool
	MetricsFile   string
}

// Flags holds command-line overrides. Zero values leave the setting alone.
type Flags struct {
	Workers       int
	LoD           string
	SubtractHoles bool
	MetricsFile   string
}

// Load reads envFile (or .env when envFile is empty and the file exists)
// into the environment, then builds a Config from the environment.
// Variables already set in the environment are not overridden by the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", DefaultEnvFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	var cfg Config

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}
		cfg.Workers = n
	}
	cfg.LoD = strings.TrimSpace(os.Getenv(EnvLoD))
	if v := os.Getenv(EnvSubtractHoles); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid boolean %q", EnvSubtractHoles, v)
		}
		cfg.SubtractHoles = b
	}
	cfg.MetricsFile = os.Getenv(EnvMetricsFile)

	return cfg, nil
}

// Resolve applies flag overrides and fills defaults.
func (c Config) Resolve(f Flags) Config {
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.LoD != "" {
		c.LoD = f.LoD
	}
	if f.SubtractHoles {
		c.SubtractHoles = true
	}
	if f.MetricsFile != "" {
		c.MetricsFile = f.MetricsFile
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}
