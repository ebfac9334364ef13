// Package config assembles the run configuration from defaults, an
// optional YAML file, and the environment. The environment wins for
// the values an operator overrides per deployment: the API credential
// and the yield threshold.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	// EnvAPIKey holds the provider credential. Absence is a fatal
	// startup error; there is no anonymous access to the datatables.
	EnvAPIKey = "NASDAQ_API_KEY"

	// EnvYieldThreshold optionally overrides the yield floor with a
	// decimal fraction, e.g. "0.045".
	EnvYieldThreshold = "SCREEN_YIELD_THRESHOLD"

	// DefaultYieldThreshold approximates a long-run treasury yield.
	// It is the documented default when neither the file nor the
	// environment sets one.
	DefaultYieldThreshold = 0.04
)

// Config is the full run configuration.
type Config struct {
	APIKey string `yaml:"-"` // environment only, never from file

	BaseURL       string `yaml:"base_url"`
	UniverseTable string `yaml:"universe_table"`
	// MetricsTable names the per-entity ratio endpoint. Empty
	// disables the enrichment fan-out.
	MetricsTable string `yaml:"metrics_table"`

	PageSize          int `yaml:"page_size"`
	MaxPages          int `yaml:"max_pages"`
	EnrichConcurrency int `yaml:"enrich_concurrency"`

	YieldThreshold         float64 `yaml:"yield_threshold"`
	CountNegativeMultiples bool    `yaml:"count_negative_multiples"`
	TopCandidates          int     `yaml:"top_candidates"`

	AliasFile  string `yaml:"alias_file"`
	OutputJSON string `yaml:"output_json"`
	OutputCSV  string `yaml:"output_csv"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		UniverseTable:     "SHARADAR/SF1",
		PageSize:          250,
		MaxPages:          50,
		EnrichConcurrency: 4,
		YieldThreshold:    DefaultYieldThreshold,
		TopCandidates:     10,
		OutputJSON:        "passlist.json",
		OutputCSV:         "passlist.csv",
	}
}

// Load builds the configuration: defaults, then the YAML file when
// path is non-empty, then environment overrides. A missing API key is
// an error here so the process dies before any network traffic.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.APIKey = os.Getenv(EnvAPIKey)
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("%s is not set", EnvAPIKey)
	}

	if raw := os.Getenv(EnvYieldThreshold); raw != "" {
		th, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse %s=%q: %w", EnvYieldThreshold, raw, err)
		}
		cfg.YieldThreshold = th
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.UniverseTable == "" {
		return fmt.Errorf("universe_table must not be empty")
	}
	if c.YieldThreshold < 0 || c.YieldThreshold >= 1 {
		return fmt.Errorf("yield_threshold %v is not a decimal fraction", c.YieldThreshold)
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("enrich_concurrency must be at least 1")
	}
	return nil
}
