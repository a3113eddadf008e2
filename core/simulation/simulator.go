package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/chargesim/core/logger"
	"github.com/kilianp07/chargesim/core/lot"
	"github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/model"
	"github.com/kilianp07/chargesim/core/rng"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

// startYear anchors the wall clock used to derive the hour of day.
const startYear = 2025

// ctxCheckEvery is how many ticks pass between cancellation checks.
const ctxCheckEvery = 4096

// Simulator runs yearly simulations from a shared random stream. It is not
// safe for concurrent use.
type Simulator struct {
	cfg Config
	loc *time.Location
	src *rng.XORShift
	log logger.Logger
	bus eventbus.EventBus
	now func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used by the simulator and its lots.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) { s.log = logger.OrNop(l) }
}

// WithBus publishes a metrics.RunEvent after each run and a
// metrics.SimulationEvent after each call to Run.
func WithBus(b eventbus.EventBus) Option {
	return func(s *Simulator) { s.bus = b }
}

// WithClock overrides the clock used to time runs.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// New validates cfg, applies defaults and seeds the stream.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidTimezone, cfg.Timezone, err)
	}
	s := &Simulator{
		cfg: cfg,
		loc: loc,
		src: rng.NewXORShift(cfg.Seed),
		log: logger.Nop{},
		now: time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the effective configuration, defaults included.
func (s *Simulator) Config() Config { return s.cfg }

// Run executes all configured runs for p and averages them.
func (s *Simulator) Run(p Parameters) (Result, error) {
	return s.RunContext(context.Background(), p)
}

// RunContext is Run with cancellation. A canceled run yields no result;
// the stream has advanced by however many draws were taken.
func (s *Simulator) RunContext(ctx context.Context, p Parameters) (Result, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	id := uuid.NewString()
	began := s.now()
	runs := s.cfg.TotalRuns
	theoretical := float64(p.StationCount) * p.StationPowerKW

	var energySum, peakSum, concurrencySum float64
	perStation := make([]model.ChargePointEnergy, p.StationCount)
	summaries := make([]RunSummary, 0, runs)

	s.log.Debugw("simulation started", map[string]any{
		"simulation_id": id,
		"seed":          s.cfg.Seed,
		"runs":          runs,
		"interval":      s.cfg.IntervalMinutes,
		"timezone":      s.cfg.Timezone,
		"stations":      p.StationCount,
	})

	for run := 0; run < runs; run++ {
		runStart := s.now()
		pl, peak, err := s.runOnce(ctx, p)
		if err != nil {
			return Result{}, err
		}

		energy := pl.TotalEnergyConsumed()
		concurrency := peak / theoretical
		for i, snap := range pl.EnergyPerChargePoint() {
			perStation[i].TotalEnergyConsumed += snap.TotalEnergyConsumed
			perStation[i].MaxPowerKW += snap.MaxPowerKW
		}
		energySum += energy
		peakSum += peak
		concurrencySum += concurrency

		summary := RunSummary{
			Run:                      run + 1,
			TotalEnergyConsumed:      energy,
			ActualMaximumPowerDemand: peak,
			ConcurrencyFactor:        concurrency * 100,
		}
		summaries = append(summaries, summary)
		s.publish(metrics.RunEvent{
			SimulationID:      id,
			Run:               summary.Run,
			StationCount:      p.StationCount,
			Ticks:             s.cfg.Ticks(),
			EnergyKWh:         energy,
			PeakPowerKW:       peak,
			ConcurrencyFactor: summary.ConcurrencyFactor,
			Duration:          s.now().Sub(runStart),
			Time:              s.now(),
		})
	}

	n := float64(runs)
	for i := range perStation {
		perStation[i].TotalEnergyConsumed /= n
		perStation[i].MaxPowerKW /= n
	}
	res := Result{
		TotalEnergyConsumed:           energySum / n,
		TheoreticalMaximumPowerDemand: theoretical,
		ActualMaximumPowerDemand:      peakSum / n,
		ConcurrencyFactor:             (concurrencySum / n) * 100,
		EnergyPerChargePoint:          perStation,
		Runs:                          summaries,
		Spread:                        spreadOf(summaries),
	}

	elapsed := s.now().Sub(began)
	s.publish(metrics.SimulationEvent{
		SimulationID:       id,
		Seed:               s.cfg.Seed,
		TotalRuns:          runs,
		IntervalMinutes:    s.cfg.IntervalMinutes,
		Timezone:           s.cfg.Timezone,
		StationCount:       p.StationCount,
		StationPowerKW:     p.StationPowerKW,
		Consumption:        p.Consumption,
		ArrivalMultiplier:  p.ArrivalMultiplier,
		EnergyKWh:          res.TotalEnergyConsumed,
		TheoreticalPowerKW: res.TheoreticalMaximumPowerDemand,
		PeakPowerKW:        res.ActualMaximumPowerDemand,
		ConcurrencyFactor:  res.ConcurrencyFactor,
		Duration:           elapsed,
		Time:               s.now(),
	})
	s.log.Debugf("simulation %s finished in %s: concurrency %.2f%%", id, elapsed, res.ConcurrencyFactor)
	return res, nil
}

// runOnce steps a fresh lot through the year and returns it with its peak
// instantaneous power.
func (s *Simulator) runOnce(ctx context.Context, p Parameters) (*lot.ParkingLot, float64, error) {
	interval := s.cfg.IntervalMinutes
	pl := lot.New(p.Consumption, interval, s.src, s.log)
	for i := 0; i < p.StationCount; i++ {
		pl.AddChargePoint(model.NewChargePoint(p.StationPowerKW))
	}

	start, step := s.origin()
	peak := -1.0
	ticks := s.cfg.Ticks()
	for tick := 1; tick <= ticks; tick++ {
		if tick%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		hour := start.Add(time.Duration(tick) * step).Hour()
		pl.StepArrivals(hour, p.ArrivalMultiplier)
		pl.StepDepartures()
		peak = math.Max(peak, pl.InstantaneousPower())
	}
	return pl, peak, nil
}

// origin returns the wall-clock origin and the tick length. Adding whole
// durations to the origin keeps DST transitions visible as skipped or
// repeated hours.
func (s *Simulator) origin() (time.Time, time.Duration) {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, s.loc)
	return start, time.Duration(s.cfg.IntervalMinutes) * time.Minute
}

func (s *Simulator) publish(ev eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// HourSequence returns the hour of day for the first n ticks, as seen by
// the simulator's wall clock in its timezone.
func (s *Simulator) HourSequence(n int) []int {
	start, step := s.origin()
	out := make([]int, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i+1) * step).Hour()
	}
	return out
}
