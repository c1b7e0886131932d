// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the run configuration shared by every foodfacts
// command. Values come from DefaultConfig, optionally overlaid by a YAML
// file, and finally by command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/poiesic/foodfacts/core"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSourcePath  = errors.New("source.path is required")
	ErrInvalidDelimiter   = errors.New("source.delimiter must be a single character")
	ErrMissingOutputPath  = errors.New("output.path is required")
	ErrInvalidTargetCount = errors.New("sampling.target_count must be non-negative")
	ErrMissingStorePath   = errors.New("store.path is required unless store.in_memory is set")
	ErrInvalidBatchSize   = errors.New("store.batch_size must be at least 1")
	ErrInvalidWorkers     = errors.New("store.workers must be at least 1")
	ErrInvalidMaxAttempts = errors.New("store.max_attempts must be at least 1")
	ErrInvalidLimit       = errors.New("analysis.limit and analysis.top_n must be at least 1")
	ErrInvalidMaxEnergy   = errors.New("max_energy must be non-negative")
	ErrMissingListenAddr  = errors.New("dashboard.addr is required")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrUnknownIndexField  = errors.New("store.index_fields contains an unknown field")
)

// Default values.
const (
	DefaultSourcePath  = "en.openfoodfacts.org.products.tsv"
	DefaultOutputPath  = "openfoodfacts_cleaned.json"
	DefaultTargetCount = 166288
	DefaultSeed        = 42
	DefaultStorePath   = "foodfacts.db"
	DefaultBatchSize   = 1000
	DefaultMaxAttempts = 3
	DefaultLimit       = 10
	DefaultTopN        = 20
	DefaultListenAddr  = ":8501"
	DefaultDashLimit   = 15
	DefaultDashEnergy  = 10000
)

// DefaultIndexFields are the secondary indexes built after a bulk load.
var DefaultIndexFields = []string{
	"product_name", "categories", "countries",
	"energy_100g", "sugars_100g", "fat_100g",
}

// Config represents the complete foodfacts configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Output    OutputConfig    `yaml:"output"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Store     StoreConfig     `yaml:"store"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig describes the raw delimited product export.
type SourceConfig struct {
	Path       string `yaml:"path"`
	Delimiter  string `yaml:"delimiter"`
	LazyQuotes bool   `yaml:"lazy_quotes"`
}

// DelimiterRune returns the delimiter as a rune. Validate guarantees a
// single character; "\t" is accepted as an escape for tab.
func (s *SourceConfig) DelimiterRune() rune {
	d := s.Delimiter
	if d == `\t` || d == "" {
		return '\t'
	}
	return []rune(d)[0]
}

// OutputConfig describes the JSON artifact.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Indent int    `yaml:"indent"`
}

// SamplingConfig controls the reproducible sample.
type SamplingConfig struct {
	TargetCount int    `yaml:"target_count"`
	Seed        uint64 `yaml:"seed"`
}

// StoreConfig controls the document store and the bulk loader.
type StoreConfig struct {
	Path         string   `yaml:"path"`
	InMemory     bool     `yaml:"in_memory"`
	BatchSize    int      `yaml:"batch_size"`
	Workers      int      `yaml:"workers"`
	DropExisting bool     `yaml:"drop_existing"`
	IndexFields  []string `yaml:"index_fields"`
	// MaxAttempts bounds inserts of one batch while the store is busy.
	MaxAttempts int `yaml:"max_attempts"`
}

// AnalysisConfig controls the aggregation queries.
type AnalysisConfig struct {
	Limit     int     `yaml:"limit"`
	TopN      int     `yaml:"top_n"`
	MaxEnergy float64 `yaml:"max_energy"`
}

// DashboardConfig controls the HTTP dashboard.
type DashboardConfig struct {
	Addr        string   `yaml:"addr"`
	Limit       int      `yaml:"limit"`
	MaxEnergy   float64  `yaml:"max_energy"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Source: SourceConfig{
			Path:       DefaultSourcePath,
			Delimiter:  `\t`,
			LazyQuotes: true,
		},
		Output: OutputConfig{
			Path:   DefaultOutputPath,
			Indent: 2,
		},
		Sampling: SamplingConfig{
			TargetCount: DefaultTargetCount,
			Seed:        DefaultSeed,
		},
		Store: StoreConfig{
			Path:        DefaultStorePath,
			BatchSize:   DefaultBatchSize,
			Workers:     workers,
			IndexFields: append([]string(nil), DefaultIndexFields...),
			MaxAttempts: DefaultMaxAttempts,
		},
		Analysis: AnalysisConfig{
			Limit: DefaultLimit,
			TopN:  DefaultTopN,
		},
		Dashboard: DashboardConfig{
			Addr:        DefaultListenAddr,
			Limit:       DefaultDashLimit,
			MaxEnergy:   DefaultDashEnergy,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys absent from the
// file keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Path) == "" {
		return ErrMissingSourcePath
	}
	if d := c.Source.Delimiter; d != "" && d != `\t` && len([]rune(d)) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, d)
	}

	if strings.TrimSpace(c.Output.Path) == "" {
		return ErrMissingOutputPath
	}

	if c.Sampling.TargetCount < 0 {
		return ErrInvalidTargetCount
	}

	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return ErrMissingStorePath
	}
	if c.Store.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.Store.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.Store.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	for _, field := range c.Store.IndexFields {
		if !core.IsProjectedField(field) {
			return fmt.Errorf("%w: %s", ErrUnknownIndexField, field)
		}
	}

	if c.Analysis.Limit < 1 || c.Analysis.TopN < 1 || c.Dashboard.Limit < 1 {
		return ErrInvalidLimit
	}
	if c.Analysis.MaxEnergy < 0 || c.Dashboard.MaxEnergy < 0 {
		return ErrInvalidMaxEnergy
	}

	if strings.TrimSpace(c.Dashboard.Addr) == "" {
		return ErrMissingListenAddr
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
