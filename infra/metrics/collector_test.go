package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/internal/eventbus"
)

type countingSink struct {
	mu   sync.Mutex
	runs []coremetrics.RunEvent
	sims []coremetrics.SimulationEvent
}

func (c *countingSink) RecordRun(ev coremetrics.RunEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, ev)
	return nil
}

func (c *countingSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sims = append(c.sims, ev)
	return nil
}

func (c *countingSink) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runs), len(c.sims)
}

func TestEventCollectorForwardsSimulatorEvents(t *testing.T) {
	bus := eventbus.New()
	sink := &countingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	sim, err := simulation.New(simulation.Config{TotalRuns: 3, IntervalMinutes: 60}, simulation.WithBus(bus))
	require.NoError(t, err)
	_, err = sim.Run(simulation.Parameters{StationCount: 2})
	require.NoError(t, err)
	bus.Publish("ignored")

	assert.Eventually(t, func() bool {
		r, s := sink.counts()
		return r == 3 && s == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorStopsOnBusClose(t *testing.T) {
	bus := eventbus.New()
	done := StartEventCollector(context.Background(), bus, &countingSink{}, nil)
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestEventCollectorNilInputs(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, nil, nil)
	_, open := <-done
	assert.False(t, open)
}
