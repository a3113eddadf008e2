// Package storetest holds the behavior every store.Store implementation must
// share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/core/model"
	"github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/core/store"
)

// Run exercises a fresh store returned by newStore in every subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("create get list", func(t *testing.T) { testCreateGetList(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("delete cascades", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("results", func(t *testing.T) { testResults(t, newStore(t)) })
	t.Run("not found", func(t *testing.T) { testNotFound(t, newStore(t)) })
}

func sample(n int) store.InputParameters {
	return store.InputParameters{StationPowerKW: 11, Consumption: 18, StationCount: n, ArrivalMultiplier: 100}
}

func testCreateGetList(t *testing.T, s store.Store) {
	ctx := context.Background()
	a, err := s.CreateParameters(ctx, sample(20))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	b, err := s.CreateParameters(ctx, sample(5))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	got, err := s.GetParameters(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.StationCount)
	assert.Equal(t, 11.0, got.StationPowerKW)
	assert.Equal(t, 18.0, got.Consumption)
	assert.Equal(t, 100.0, got.ArrivalMultiplier)

	list, err := s.ListParameters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	p, err := s.CreateParameters(ctx, sample(20))
	require.NoError(t, err)

	power := 22.0
	mult := 150.0
	upd, err := s.UpdateParameters(ctx, p.ID, store.ParametersPatch{StationPowerKW: &power, ArrivalMultiplier: &mult})
	require.NoError(t, err)
	assert.Equal(t, 22.0, upd.StationPowerKW)
	assert.Equal(t, 150.0, upd.ArrivalMultiplier)
	assert.Equal(t, 20, upd.StationCount)

	got, err := s.GetParameters(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, upd.StationPowerKW, got.StationPowerKW)
	assert.Equal(t, upd.ArrivalMultiplier, got.ArrivalMultiplier)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	p, err := s.CreateParameters(ctx, sample(2))
	require.NoError(t, err)
	_, err = s.AddResult(ctx, store.SimulationRecord{ParametersID: p.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteParameters(ctx, p.ID))
	_, err = s.GetParameters(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.ListResults(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteParameters(ctx, p.ID), store.ErrNotFound)
}

func testResults(t *testing.T, s store.Store) {
	ctx := context.Background()
	p, err := s.CreateParameters(ctx, sample(2))
	require.NoError(t, err)

	res := simulation.Result{
		TotalEnergyConsumed:           1234.5,
		TheoreticalMaximumPowerDemand: 22,
		ActualMaximumPowerDemand:      11,
		ConcurrencyFactor:             50,
		EnergyPerChargePoint: []model.ChargePointEnergy{
			{MaxPowerKW: 11, TotalEnergyConsumed: 600},
			{MaxPowerKW: 11, TotalEnergyConsumed: 634.5},
		},
	}
	opts := simulation.Config{Seed: 42, TotalRuns: 3, Timezone: "Europe/Berlin"}
	rec, err := s.AddResult(ctx, store.SimulationRecord{ParametersID: p.ID, Options: opts, Result: res})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	full, err := store.WithResults(ctx, s, p.ID)
	require.NoError(t, err)
	require.Len(t, full.Results, 1)
	got := full.Results[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, opts, got.Options)
	assert.Equal(t, res.ConcurrencyFactor, got.Result.ConcurrencyFactor)
	assert.Equal(t, res.EnergyPerChargePoint, got.Result.EnergyPerChargePoint)

	_, err = s.AddResult(ctx, store.SimulationRecord{ParametersID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetParameters(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	n := 3
	_, err = s.UpdateParameters(ctx, "nope", store.ParametersPatch{StationCount: &n})
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ListParameters(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	empty, err := s.CreateParameters(ctx, sample(1))
	require.NoError(t, err)
	full, err := store.WithResults(ctx, s, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, full.Results)
	assert.Empty(t, full.Results)
}
