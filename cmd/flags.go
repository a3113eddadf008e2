package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargesim/core/simulation"
)

// simFlags are the simulator and lot settings shared by simulate and sweep.
// Only flags set on the command line override the configuration.
type simFlags struct {
	seed        uint32
	runs        int
	interval    int
	timezone    string
	power       float64
	consumption float64
	multiplier  float64
}

func (f *simFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Uint32Var(&f.seed, "seed", simulation.DefaultSeed, "random seed")
	fs.IntVar(&f.runs, "runs", simulation.DefaultTotalRuns, "number of simulated years to average")
	fs.IntVar(&f.interval, "interval", simulation.DefaultIntervalMinutes, "tick length in minutes, a divisor of 60")
	fs.StringVar(&f.timezone, "timezone", simulation.DefaultTimezone, "IANA timezone of the wall clock")
	fs.Float64Var(&f.power, "power", simulation.DefaultStationPowerKW, "charge point rating in kW")
	fs.Float64Var(&f.consumption, "consumption", simulation.DefaultConsumption, "vehicle consumption in kWh per 100 km")
	fs.Float64Var(&f.multiplier, "multiplier", simulation.DefaultArrivalMultiplier, "arrival probability multiplier in percent (20-200)")
}

// apply copies the changed flags onto cfg and p. Zero selects a default in
// the configuration, so an explicit zero or negative flag is rejected.
func (f *simFlags) apply(cmd *cobra.Command, cfg *simulation.Config, p *simulation.Parameters) error {
	fs := cmd.Flags()
	if fs.Changed("seed") {
		if f.seed == 0 {
			return fmt.Errorf("%w: --seed must be non-zero", simulation.ErrInvalidParameters)
		}
		cfg.Seed = f.seed
	}
	if fs.Changed("runs") {
		if f.runs <= 0 {
			return fmt.Errorf("%w: --runs must be positive, got %d", simulation.ErrInvalidParameters, f.runs)
		}
		cfg.TotalRuns = f.runs
	}
	if fs.Changed("interval") {
		if f.interval <= 0 {
			return fmt.Errorf("%w: got %d", simulation.ErrInvalidInterval, f.interval)
		}
		cfg.IntervalMinutes = f.interval
	}
	if fs.Changed("timezone") {
		cfg.Timezone = f.timezone
	}
	for _, v := range []struct {
		name string
		val  float64
		dst  *float64
	}{
		{"power", f.power, &p.StationPowerKW},
		{"consumption", f.consumption, &p.Consumption},
		{"multiplier", f.multiplier, &p.ArrivalMultiplier},
	} {
		if !fs.Changed(v.name) {
			continue
		}
		if v.val <= 0 {
			return fmt.Errorf("%w: --%s must be positive, got %g", simulation.ErrInvalidParameters, v.name, v.val)
		}
		*v.dst = v.val
	}
	return nil
}
