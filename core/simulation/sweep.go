package simulation

import (
	"context"
	"fmt"
	"sync"
)

// SweepPoint is the concurrency factor observed for one station count.
type SweepPoint struct {
	StationCount      int     `json:"station_count"`
	ConcurrencyFactor float64 `json:"concurrency_factor"`
	PeakPowerKW       float64 `json:"actual_maximum_power_demand_kw"`
	EnergyKWh         float64 `json:"total_energy_consumed_kwh"`
}

// SweepOptions bounds a station-count sweep.
type SweepOptions struct {
	From    int `json:"from" yaml:"from"`
	To      int `json:"to" yaml:"to"`
	Workers int `json:"workers" yaml:"workers"`
}

// Sweep runs one simulation per station count in [From, To]. Every point
// gets its own Simulator seeded from cfg, so a point's result does not
// depend on the other points or on the number of workers. Points are
// returned in station-count order.
func Sweep(ctx context.Context, cfg Config, base Parameters, opts SweepOptions, simOpts ...Option) ([]SweepPoint, error) {
	if opts.From <= 0 {
		opts.From = 1
	}
	if opts.To < opts.From {
		return nil, fmt.Errorf("%w: sweep range %d..%d", ErrInvalidParameters, opts.From, opts.To)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	// Fail on configuration before spawning workers.
	if _, err := New(cfg, simOpts...); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	points := make([]SweepPoint, opts.To-opts.From+1)
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				pt, err := sweepPoint(ctx, cfg, base, n, simOpts)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				points[n-opts.From] = pt
			}
		}()
	}

feed:
	for n := opts.From; n <= opts.To; n++ {
		select {
		case jobs <- n:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

func sweepPoint(ctx context.Context, cfg Config, base Parameters, stations int, simOpts []Option) (SweepPoint, error) {
	sim, err := New(cfg, simOpts...)
	if err != nil {
		return SweepPoint{}, err
	}
	p := base
	p.StationCount = stations
	res, err := sim.RunContext(ctx, p)
	if err != nil {
		return SweepPoint{}, fmt.Errorf("sweep %d stations: %w", stations, err)
	}
	return SweepPoint{
		StationCount:      stations,
		ConcurrencyFactor: res.ConcurrencyFactor,
		PeakPowerKW:       res.ActualMaximumPowerDemand,
		EnergyKWh:         res.TotalEnergyConsumed,
	}, nil
}
