package simulation

import "fmt"

// Defaults applied to zero-valued fields.
const (
	DefaultSeed              uint32  = 1337
	DefaultTotalRuns                 = 1
	DefaultIntervalMinutes           = 15
	DefaultTimezone                  = "UTC"
	DefaultStationPowerKW    float64 = 11
	DefaultConsumption       float64 = 18
	DefaultArrivalMultiplier float64 = 100
)

// minutesPerYear is the length of the simulated non-leap year.
const minutesPerYear = 365 * 24 * 60

// Config holds the simulator settings. Zero values select the defaults.
type Config struct {
	Seed            uint32 `json:"seed" yaml:"seed"`
	TotalRuns       int    `json:"total_runs" yaml:"total_runs"`
	IntervalMinutes int    `json:"interval" yaml:"interval"`
	Timezone        string `json:"timezone" yaml:"timezone"`
}

// SetDefaults fills unset fields. A seed of 0 is treated as unset since it
// is a fixed point of the generator.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.TotalRuns <= 0 {
		c.TotalRuns = DefaultTotalRuns
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = DefaultIntervalMinutes
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
}

// Validate checks the interval. The timezone is checked when it is loaded.
func (c Config) Validate() error {
	if c.IntervalMinutes <= 0 || 60%c.IntervalMinutes != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, c.IntervalMinutes)
	}
	return nil
}

// Ticks returns the number of intervals in the simulated year.
func (c Config) Ticks() int { return minutesPerYear / c.IntervalMinutes }

// Parameters describe the lot for one call to Run. Zero values select the
// defaults except StationCount, which is required.
type Parameters struct {
	StationPowerKW    float64 `json:"station_power_kw" yaml:"station_power_kw"`
	Consumption       float64 `json:"consumption_kwh_per_100km" yaml:"consumption_kwh_per_100km"`
	StationCount      int     `json:"station_count" yaml:"station_count"`
	ArrivalMultiplier float64 `json:"arrival_multiplier" yaml:"arrival_multiplier"`
}

// SetDefaults fills unset fields.
func (p *Parameters) SetDefaults() {
	if p.StationPowerKW == 0 {
		p.StationPowerKW = DefaultStationPowerKW
	}
	if p.Consumption == 0 {
		p.Consumption = DefaultConsumption
	}
	if p.ArrivalMultiplier == 0 {
		p.ArrivalMultiplier = DefaultArrivalMultiplier
	}
}

// Validate checks the station count and rejects negative ratings.
func (p Parameters) Validate() error {
	if p.StationCount <= 0 {
		return fmt.Errorf("%w: station count must be positive, got %d", ErrInvalidParameters, p.StationCount)
	}
	if p.StationPowerKW < 0 {
		return fmt.Errorf("%w: station power must be positive, got %g", ErrInvalidParameters, p.StationPowerKW)
	}
	if p.Consumption < 0 {
		return fmt.Errorf("%w: consumption must be positive, got %g", ErrInvalidParameters, p.Consumption)
	}
	if p.ArrivalMultiplier < 0 {
		return fmt.Errorf("%w: arrival multiplier must be positive, got %g", ErrInvalidParameters, p.ArrivalMultiplier)
	}
	return nil
}
