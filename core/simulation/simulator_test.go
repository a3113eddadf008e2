package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

func TestNewAppliesDefaults(t *testing.T) {
	sim, err := New(Config{})
	require.NoError(t, err)
	cfg := sim.Config()
	assert.Equal(t, DefaultSeed, cfg.Seed)
	assert.Equal(t, 1, cfg.TotalRuns)
	assert.Equal(t, 15, cfg.IntervalMinutes)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 35040, cfg.Ticks())
}

func TestNewRejectsInvalidInterval(t *testing.T) {
	for _, iv := range []int{7, -15, 45, 61} {
		_, err := New(Config{IntervalMinutes: iv})
		require.Error(t, err, "interval %d", iv)
		assert.True(t, errors.Is(err, ErrInvalidInterval), "interval %d", iv)
	}
}

func TestNewAcceptsDivisorsOfSixty(t *testing.T) {
	for _, iv := range []int{1, 2, 3, 4, 5, 6, 10, 12, 15, 20, 30, 60} {
		_, err := New(Config{IntervalMinutes: iv})
		assert.NoError(t, err, "interval %d", iv)
	}
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New(Config{Timezone: "Mars/Olympus_Mons"})
	require.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestRunRequiresStations(t *testing.T) {
	sim, err := New(Config{IntervalMinutes: 60})
	require.NoError(t, err)
	for _, n := range []int{0, -3} {
		_, err := sim.Run(Parameters{StationCount: n})
		require.ErrorIs(t, err, ErrInvalidParameters)
	}
}

func TestRunRejectsNegativeRatings(t *testing.T) {
	sim, err := New(Config{IntervalMinutes: 60})
	require.NoError(t, err)
	for _, p := range []Parameters{
		{StationCount: 1, StationPowerKW: -11},
		{StationCount: 1, Consumption: -18},
		{StationCount: 1, ArrivalMultiplier: -100},
	} {
		_, err := sim.Run(p)
		require.ErrorIs(t, err, ErrInvalidParameters)
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := Config{Seed: 42, TotalRuns: 2, IntervalMinutes: 60}
	p := Parameters{StationCount: 4, ArrivalMultiplier: 150}

	a, err := New(cfg)
	require.NoError(t, err)
	b, err := New(cfg)
	require.NoError(t, err)
	ra, err := a.Run(p)
	require.NoError(t, err)
	rb, err := b.Run(p)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)

	// The stream is shared across calls, so a second call differs.
	ra2, err := a.Run(p)
	require.NoError(t, err)
	assert.NotEqual(t, ra.Runs, ra2.Runs)
}

func TestRunInvariants(t *testing.T) {
	sim, err := New(Config{Seed: 7, TotalRuns: 3, IntervalMinutes: 30})
	require.NoError(t, err)
	res, err := sim.Run(Parameters{StationCount: 6, StationPowerKW: 22})
	require.NoError(t, err)

	assert.Equal(t, 132.0, res.TheoreticalMaximumPowerDemand)
	assert.GreaterOrEqual(t, res.ConcurrencyFactor, 0.0)
	assert.LessOrEqual(t, res.ConcurrencyFactor, 100.0)
	assert.LessOrEqual(t, res.ActualMaximumPowerDemand, res.TheoreticalMaximumPowerDemand)
	require.Len(t, res.EnergyPerChargePoint, 6)
	require.Len(t, res.Runs, 3)

	sum := 0.0
	for _, cp := range res.EnergyPerChargePoint {
		assert.Equal(t, 22.0, cp.MaxPowerKW)
		sum += cp.TotalEnergyConsumed
	}
	assert.InDelta(t, res.TotalEnergyConsumed, sum, 1e-6)

	for i, r := range res.Runs {
		assert.Equal(t, i+1, r.Run)
		assert.InDelta(t, r.ActualMaximumPowerDemand/132*100, r.ConcurrencyFactor, 1e-9)
	}
}

func TestRunPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	sim, err := New(Config{TotalRuns: 2, IntervalMinutes: 60}, WithBus(bus))
	require.NoError(t, err)
	res, err := sim.Run(Parameters{StationCount: 2})
	require.NoError(t, err)

	var runs []metrics.RunEvent
	var done []metrics.SimulationEvent
	for i := 0; i < 3; i++ {
		switch ev := (<-sub).(type) {
		case metrics.RunEvent:
			runs = append(runs, ev)
		case metrics.SimulationEvent:
			done = append(done, ev)
		default:
			t.Fatalf("unexpected event %T", ev)
		}
	}
	require.Len(t, runs, 2)
	require.Len(t, done, 1)
	assert.Equal(t, 1, runs[0].Run)
	assert.Equal(t, 2, runs[1].Run)
	assert.Equal(t, 8760, runs[0].Ticks)
	assert.Equal(t, runs[0].SimulationID, done[0].SimulationID)
	assert.Equal(t, res.ConcurrencyFactor, done[0].ConcurrencyFactor)
	assert.Equal(t, 2, done[0].StationCount)
	assert.Equal(t, DefaultSeed, done[0].Seed)
	assert.Equal(t, "UTC", done[0].Timezone)
}

func TestRunContextCanceled(t *testing.T) {
	sim, err := New(Config{IntervalMinutes: 60})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.RunContext(ctx, Parameters{StationCount: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestHourSequenceDST(t *testing.T) {
	utc, err := New(Config{IntervalMinutes: 60})
	require.NoError(t, err)
	berlin, err := New(Config{IntervalMinutes: 60, Timezone: "Europe/Berlin"})
	require.NoError(t, err)

	// 2025-03-30 is the spring-forward day in Europe/Berlin: 02:00 is skipped.
	const day = 31 + 28 + 29
	u := utc.HourSequence(day*24 + 3)
	b := berlin.HourSequence(day*24 + 3)
	assert.Equal(t, []int{0, 1, 2, 3}, u[day*24-1:])
	assert.Equal(t, []int{0, 1, 3, 4}, b[day*24-1:])

	// The sequences agree before the transition.
	assert.Equal(t, u[:day*24-1], b[:day*24-1])
}

func TestResultJSON(t *testing.T) {
	sim, err := New(Config{IntervalMinutes: 60})
	require.NoError(t, err)
	res, err := sim.Run(Parameters{StationCount: 1})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{
		"total_energy_consumed_kwh",
		"theoretical_maximum_power_demand_kw",
		"actual_maximum_power_demand_kw",
		"concurrency_factor",
		"energy_per_charge_point",
		"spread",
	} {
		assert.Contains(t, m, k)
	}
}

func TestSpreadOf(t *testing.T) {
	assert.Equal(t, Spread{}, spreadOf(nil))

	single := spreadOf([]RunSummary{{ConcurrencyFactor: 50, TotalEnergyConsumed: 10}})
	assert.Equal(t, 50.0, single.ConcurrencyMean)
	assert.Zero(t, single.ConcurrencyStdDev)
	assert.False(t, math.IsNaN(single.EnergyStdDev))

	s := spreadOf([]RunSummary{
		{ConcurrencyFactor: 50, TotalEnergyConsumed: 100},
		{ConcurrencyFactor: 55, TotalEnergyConsumed: 200},
		{ConcurrencyFactor: 50, TotalEnergyConsumed: 300},
		{ConcurrencyFactor: 45, TotalEnergyConsumed: 400},
		{ConcurrencyFactor: 50, TotalEnergyConsumed: 500},
	})
	assert.InDelta(t, 50.0, s.ConcurrencyMean, 1e-12)
	assert.InDelta(t, math.Sqrt(12.5), s.ConcurrencyStdDev, 1e-12)
	assert.InDelta(t, 300.0, s.EnergyMean, 1e-12)
	assert.InDelta(t, math.Sqrt(25000), s.EnergyStdDev, 1e-9)
}
