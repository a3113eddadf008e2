package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	sims   int
	runs   int
	closed bool
	err    error
}

func (r *recordSink) RecordSimulation(SimulationEvent) error {
	r.sims++
	return r.err
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.runs++
	return r.err
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

type simOnlySink struct{ sims int }

func (s *simOnlySink) RecordSimulation(SimulationEvent) error {
	s.sims++
	return nil
}

func TestMultiSinkForwards(t *testing.T) {
	s1 := &recordSink{}
	s2 := &simOnlySink{}
	m := NewMultiSink(s1, s2)

	require.NoError(t, m.RecordSimulation(SimulationEvent{StationCount: 3}))
	require.NoError(t, m.RecordRun(RunEvent{Run: 1}))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, s1.sims)
	assert.Equal(t, 1, s1.runs)
	assert.True(t, s1.closed)
	assert.Equal(t, 1, s2.sims)
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordSink{}
	bad := &recordSink{err: boom}
	m := NewMultiSink(bad, ok)

	err := m.RecordSimulation(SimulationEvent{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.sims, "healthy sink still receives the event")
}
