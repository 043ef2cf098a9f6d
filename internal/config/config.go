// Package config resolves toolkit settings from defaults, YAML files and
// ESDES_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/esdes/internal/env"
	"github.com/RowanDark/esdes/internal/esdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

// Config captures the settings resolved from defaults, optional files and
// environment overrides.
type Config struct {
	Rounds     int           `yaml:"rounds"`
	Columns    int           `yaml:"columns"`
	Trace      string        `yaml:"trace"`
	Workers    int           `yaml:"workers"`
	RecipesDir string        `yaml:"recipes_dir"`
	AuditLog   string        `yaml:"audit_log"`
	Tracing    TracingConfig `yaml:"tracing"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	File        string  `yaml:"file"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Rounds:  esdes.DefaultRounds,
		Columns: 3,
		Trace:   esdes.LevelNone.String(),
		Workers: 0,
		Tracing: TracingConfig{
			SampleRatio: 1,
			ServiceName: "esdes",
		},
	}
}

// Load resolves the configuration using defaults, configuration files and
// environment overrides. Files are applied in order, later ones winning:
//  1. ~/.esdes/config.yml
//  2. ./esdes.yml
//
// Environment variables prefixed with ESDES_ have the highest precedence.
// The result is validated.
func Load() (Config, error) {
	cfg := Default()

	if err := loadHomeConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLocalConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Rounds)
	}
	if c.Columns < transposition.MinColumns || c.Columns > transposition.MaxColumns {
		return fmt.Errorf("columns must be between %d and %d, got %d",
			transposition.MinColumns, transposition.MaxColumns, c.Columns)
	}
	if _, err := esdes.ParseLevel(c.Trace); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// Level returns the parsed trace level. Validate guarantees it parses.
func (c Config) Level() esdes.Level {
	level, _ := esdes.ParseLevel(c.Trace)
	return level
}

// RecipesPath returns RecipesDir, defaulting to ~/.esdes/recipes.
func (c Config) RecipesPath() (string, error) {
	if c.RecipesDir != "" {
		return c.RecipesDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".esdes", "recipes"), nil
}

// WriteYAML renders c as YAML.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func loadHomeConfig(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("determine home directory: %w", err)
	}
	return loadFile(cfg, filepath.Join(home, ".esdes", "config.yml"))
}

func loadLocalConfig(cfg *Config) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	return loadFile(cfg, filepath.Join(wd, "esdes.yml"))
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fileConfig uses pointers so only keys present in a file override.
type fileConfig struct {
	Rounds     *int               `yaml:"rounds"`
	Columns    *int               `yaml:"columns"`
	Trace      *string            `yaml:"trace"`
	Workers    *int               `yaml:"workers"`
	RecipesDir *string            `yaml:"recipes_dir"`
	AuditLog   *string            `yaml:"audit_log"`
	Tracing    *fileTracingConfig `yaml:"tracing"`
}

type fileTracingConfig struct {
	File        *string  `yaml:"file"`
	SampleRatio *float64 `yaml:"sample_ratio"`
	ServiceName *string  `yaml:"service_name"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if fc.Rounds != nil {
		cfg.Rounds = *fc.Rounds
	}
	if fc.Columns != nil {
		cfg.Columns = *fc.Columns
	}
	if fc.Trace != nil {
		cfg.Trace = strings.TrimSpace(*fc.Trace)
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.RecipesDir != nil {
		cfg.RecipesDir = strings.TrimSpace(*fc.RecipesDir)
	}
	if fc.AuditLog != nil {
		cfg.AuditLog = strings.TrimSpace(*fc.AuditLog)
	}
	if fc.Tracing != nil {
		if fc.Tracing.File != nil {
			cfg.Tracing.File = strings.TrimSpace(*fc.Tracing.File)
		}
		if fc.Tracing.SampleRatio != nil {
			cfg.Tracing.SampleRatio = *fc.Tracing.SampleRatio
		}
		if fc.Tracing.ServiceName != nil {
			cfg.Tracing.ServiceName = strings.TrimSpace(*fc.Tracing.ServiceName)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"ROUNDS", &cfg.Rounds},
		{"COLUMNS", &cfg.Columns},
		{"WORKERS", &cfg.Workers},
	}
	for _, it := range ints {
		if val, ok := env.Lookup(env.Key(it.name)); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %q is not an integer", env.Key(it.name), val)
			}
			*it.dst = n
		}
	}
	if val, ok := env.Lookup(env.Key("TRACE")); ok {
		cfg.Trace = val
	}
	if val, ok := env.Lookup(env.Key("RECIPES_DIR")); ok {
		cfg.RecipesDir = val
	}
	if val, ok := env.Lookup(env.Key("AUDIT_LOG")); ok {
		cfg.AuditLog = val
	}
	if val, ok := env.Lookup(env.Key("TRACE_FILE")); ok {
		cfg.Tracing.File = val
	}
	if val, ok := env.Lookup(env.Key("TRACE_SAMPLE_RATIO")); ok {
		ratio, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", env.Key("TRACE_SAMPLE_RATIO"), val)
		}
		cfg.Tracing.SampleRatio = ratio
	}
	return nil
}
