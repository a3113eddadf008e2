package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/core/model"
	"github.com/kilianp07/chargesim/core/simulation"
)

func TestScenario(t *testing.T) {
	scs, err := LoadDir("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, scs)
	for _, sc := range scs {
		t.Run(sc.Name, func(t *testing.T) {
			out, err := Run(context.Background(), sc)
			require.NoError(t, err)
			assert.True(t, out.Passed(), "failures: %v", out.Failures)
			assert.Len(t, out.Runs, sc.Config.TotalRuns)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoadNameFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parameters:\n  station_count: 2\n"), 0o600))
	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed.yaml", sc.Name)
	assert.Equal(t, 2, sc.Parameters.StationCount)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	sc := &Scenario{
		Name:       "bad interval",
		Config:     simulation.Config{IntervalMinutes: 7},
		Parameters: simulation.Parameters{StationCount: 1},
	}
	_, err := Run(context.Background(), sc)
	require.ErrorIs(t, err, simulation.ErrInvalidInterval)
}

func TestCheckReportsEachFailure(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	res := simulation.Result{
		TotalEnergyConsumed:           100,
		TheoreticalMaximumPowerDemand: 22,
		ActualMaximumPowerDemand:      11,
		ConcurrencyFactor:             50,
		EnergyPerChargePoint: []model.ChargePointEnergy{
			{MaxPowerKW: 11, TotalEnergyConsumed: 60},
			{MaxPowerKW: 11, TotalEnergyConsumed: 40},
		},
	}

	assert.Empty(t, Check(Expected{
		ConcurrencyFactor:   f(50),
		TotalEnergyKWh:      f(100),
		EnergyPerStationKWh: []float64{60, 40},
		Concurrency:         Bounds{Min: f(40), Max: f(60)},
	}, res))

	failures := Check(Expected{
		ConcurrencyFactor:   f(49),
		PeakPowerKW:         f(22),
		EnergyPerStationKWh: []float64{60, 41},
		Energy:              Bounds{Max: f(50)},
	}, res)
	assert.Len(t, failures, 4)

	assert.Len(t, Check(Expected{EnergyPerStationKWh: []float64{100}}, res), 1)
}

func TestCheckTolerance(t *testing.T) {
	v := 50.4
	res := simulation.Result{ConcurrencyFactor: 50}
	assert.Len(t, Check(Expected{ConcurrencyFactor: &v}, res), 1)
	assert.Empty(t, Check(Expected{ConcurrencyFactor: &v, Tolerance: 0.5}, res))
}
