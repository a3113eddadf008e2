package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/simulation"
)

// EnvPrefix prefixes environment overrides, e.g.
// CHARGESIM_SIMULATION__SEED=42 sets simulation.seed.
const EnvPrefix = "CHARGESIM_"

type Config struct {
	Simulation simulation.Config     `json:"simulation"`
	Parameters simulation.Parameters `json:"parameters"`
	API        APIConfig             `json:"api"`
	Store      StoreConfig           `json:"store"`
	Metrics    metrics.Config        `json:"metrics"`
	Logging    LoggingConfig         `json:"logging"`
	Sentry     SentryConfig          `json:"sentry"`
}

// Load reads the YAML or JSON file at path, applies environment overrides
// and defaults, and validates the result. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := checkExplicit(k, cfg); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkExplicit rejects keys that are present but zero or negative. A zero
// field otherwise selects the default, which would hide a typo like
// arrival_multiplier: 0.
func checkExplicit(k *koanf.Koanf, cfg Config) error {
	if k.Exists("simulation.seed") && cfg.Simulation.Seed == 0 {
		return fmt.Errorf("%w: simulation.seed must be non-zero", simulation.ErrInvalidParameters)
	}
	for _, v := range []struct {
		key string
		val float64
	}{
		{"simulation.total_runs", float64(cfg.Simulation.TotalRuns)},
		{"simulation.interval", float64(cfg.Simulation.IntervalMinutes)},
		{"parameters.station_power_kw", cfg.Parameters.StationPowerKW},
		{"parameters.consumption_kwh_per_100km", cfg.Parameters.Consumption},
		{"parameters.arrival_multiplier", cfg.Parameters.ArrivalMultiplier},
	} {
		if k.Exists(v.key) && v.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", simulation.ErrInvalidParameters, v.key, v.val)
		}
	}
	return nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Parameters.SetDefaults()
	c.API.SetDefaults()
	c.Store.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if _, err := time.LoadLocation(c.Simulation.Timezone); err != nil {
		return fmt.Errorf("simulation: %w %q", simulation.ErrInvalidTimezone, c.Simulation.Timezone)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
