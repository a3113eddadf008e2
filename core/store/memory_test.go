package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/chargesim/core/store"
	"github.com/kilianp07/chargesim/core/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemoryStore() })
}

func TestParametersPatchApply(t *testing.T) {
	base := store.InputParameters{ID: "x", StationPowerKW: 11, Consumption: 18, StationCount: 4, ArrivalMultiplier: 100}
	n := 8
	got := store.ParametersPatch{StationCount: &n}.Apply(base)
	assert.Equal(t, 8, got.StationCount)
	assert.Equal(t, 11.0, got.StationPowerKW)
	assert.Equal(t, "x", got.ID)

	p := got.Parameters()
	assert.Equal(t, 8, p.StationCount)
	assert.Equal(t, 18.0, p.Consumption)
}
