package scenarios

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

// DefaultTolerance is used when a scenario does not set one.
const DefaultTolerance = 1e-6

// Outcome is the result of running one scenario.
type Outcome struct {
	Name     string
	Result   simulation.Result
	Runs     []metrics.RunEvent
	Failures []string
}

// Passed reports whether every check held.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Run simulates sc and evaluates its expectations. An error is returned
// only when the simulation could not run; failed checks are reported in
// the outcome.
func Run(ctx context.Context, sc *Scenario, opts ...simulation.Option) (*Outcome, error) {
	bus := eventbus.New(eventbus.WithBuffer(sc.Config.TotalRuns + 2))
	defer bus.Close()
	sub := bus.Subscribe()

	sim, err := simulation.New(sc.Config, append(opts, simulation.WithBus(bus))...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	res, err := sim.RunContext(ctx, sc.Parameters)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	out := &Outcome{Name: sc.Name, Result: res}
drain:
	for {
		select {
		case ev := <-sub:
			if run, ok := ev.(metrics.RunEvent); ok {
				out.Runs = append(out.Runs, run)
			}
		default:
			break drain
		}
	}
	out.Failures = Check(sc.Expected, res)
	if len(out.Runs) != sim.Config().TotalRuns {
		out.Failures = append(out.Failures,
			fmt.Sprintf("expected %d run events, got %d", sim.Config().TotalRuns, len(out.Runs)))
	}
	return out, nil
}

// Check compares res against exp and returns one message per failed check.
func Check(exp Expected, res simulation.Result) []string {
	tol := exp.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	var failures []string
	exact := func(name string, want *float64, got float64) {
		if want != nil && math.Abs(*want-got) > tol {
			failures = append(failures, fmt.Sprintf("%s: expected %v, got %v", name, *want, got))
		}
	}
	exact("concurrency_factor", exp.ConcurrencyFactor, res.ConcurrencyFactor)
	exact("total_energy_kwh", exp.TotalEnergyKWh, res.TotalEnergyConsumed)
	exact("peak_power_kw", exp.PeakPowerKW, res.ActualMaximumPowerDemand)
	exact("theoretical_power_kw", exp.TheoreticalPowerKW, res.TheoreticalMaximumPowerDemand)

	if !exp.Concurrency.contains(res.ConcurrencyFactor) {
		failures = append(failures, fmt.Sprintf("concurrency %v outside %s", res.ConcurrencyFactor, exp.Concurrency))
	}
	if !exp.Energy.contains(res.TotalEnergyConsumed) {
		failures = append(failures, fmt.Sprintf("energy %v outside %s", res.TotalEnergyConsumed, exp.Energy))
	}

	if want := exp.EnergyPerStationKWh; len(want) > 0 {
		got := res.EnergyPerChargePoint
		if len(want) != len(got) {
			failures = append(failures, fmt.Sprintf("energy_per_station_kwh: expected %d stations, got %d", len(want), len(got)))
		} else {
			for i := range want {
				if math.Abs(want[i]-got[i].TotalEnergyConsumed) > tol {
					failures = append(failures, fmt.Sprintf("energy_per_station_kwh[%d]: expected %v, got %v",
						i, want[i], got[i].TotalEnergyConsumed))
				}
			}
		}
	}
	return failures
}
