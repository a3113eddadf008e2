package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/config"
	"github.com/kilianp07/chargesim/core/factory"
	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/core/simulation"
)

type recordingSink struct {
	mu   sync.Mutex
	runs int
	sims []coremetrics.SimulationEvent
}

func (r *recordingSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sims = append(r.sims, ev)
	return nil
}

func (r *recordingSink) RecordRun(coremetrics.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return nil
}

var testSink = &recordingSink{}

func init() {
	_ = coremetrics.RegisterMetricsSink("app-test", func(map[string]any) (coremetrics.MetricsSink, error) {
		return testSink, nil
	})
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Address = "127.0.0.1:0"
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "app-test"}}
	cfg.SetDefaults()
	return cfg
}

func TestServiceRecordsSimulationEvents(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	svc.Start(context.Background())

	sim, err := simulation.New(simulation.Config{TotalRuns: 2, IntervalMinutes: 60}, svc.SimulatorOptions()...)
	require.NoError(t, err)
	_, err = sim.Run(simulation.Parameters{StationCount: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Close())

	testSink.mu.Lock()
	defer testSink.mu.Unlock()
	assert.Equal(t, 2, testSink.runs)
	require.Len(t, testSink.sims, 1)
	assert.Equal(t, 3, testSink.sims[0].StationCount)
	assert.InDelta(t, 5706.0, testSink.sims[0].EnergyKWh, 1e-6)
}

func TestServiceServeStopsOnCancel(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	require.Error(t, err)
}

func TestPromAddr(t *testing.T) {
	assert.Equal(t, ":9090", promAddr("9090"))
	assert.Equal(t, "127.0.0.1:9090", promAddr("127.0.0.1:9090"))
	assert.Equal(t, ":9090", promAddr(":9090"))
}
