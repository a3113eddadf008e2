package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/core/factory"
	metrics "github.com/kilianp07/chargesim/core/metrics"
	inframetrics "github.com/kilianp07/chargesim/infra/metrics"
	_ "github.com/kilianp07/chargesim/infra/mqtt"
)

type closeSink struct{ closed bool }

func (s *closeSink) RecordSimulation(metrics.SimulationEvent) error { return nil }
func (s *closeSink) Close() error {
	s.closed = true
	return nil
}

var lastCloseSink *closeSink

func init() {
	_ = metrics.RegisterMetricsSink("test-closer", func(map[string]any) (metrics.MetricsSink, error) {
		lastCloseSink = &closeSink{}
		return lastCloseSink, nil
	})
}

func TestNewMetricsSinkDefaultsToNop(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSinkPrometheus(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
	assert.IsType(t, &inframetrics.PromSink{}, s)

	// The collectors are shared with the default registry, so a second
	// prometheus sink reuses them instead of failing.
	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	require.NoError(t, err)
}

func TestNewMetricsSinkMQTTRequiresBroker(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{
		Type: "mqtt",
		Conf: map[string]any{"topic_prefix": "chargesim"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink 0 (mqtt)")
	assert.Contains(t, err.Error(), "broker is required")
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink 1 (statsd)")
	assert.Contains(t, err.Error(), "prometheus")
}

func TestNewMetricsSinkMulti(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "prometheus"}})
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	require.Len(t, m.Sinks, 2)
	assert.IsType(t, metrics.NopSink{}, m.Sinks[0])
	assert.IsType(t, &inframetrics.PromSink{}, m.Sinks[1])
	assert.NoError(t, m.RecordSimulation(metrics.SimulationEvent{StationCount: 3, ConcurrencyFactor: 42}))
}

func TestNewMetricsSinkClosesBuiltSinksOnError(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "test-closer"},
		{Type: "mqtt", Conf: map[string]any{"qos": 1}},
	})
	require.Error(t, err)
	require.NotNil(t, lastCloseSink)
	assert.True(t, lastCloseSink.closed)
}
