package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/chargesim/core/metrics"
)

type influxRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *influxRecorder) handler(health int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/health" {
			w.WriteHeader(health)
			if health == http.StatusOK {
				_, _ = io.WriteString(w, `{"name":"influxdb","status":"pass","message":"ready"}`)
			}
			return
		}
		data, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, string(data))
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestInfluxSinkRecordRun(t *testing.T) {
	rec := &influxRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()
	now := time.Unix(1735689600, 0)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		SimulationID:      "sim-1",
		Run:               2,
		StationCount:      20,
		Ticks:             35040,
		EnergyKWh:         153972.0004,
		PeakPowerKW:       121,
		ConcurrencyFactor: 55,
		Duration:          1500 * time.Millisecond,
		Time:              now,
	}))

	require.Len(t, rec.bodies, 1)
	body := strings.TrimSpace(rec.bodies[0])
	assert.True(t, strings.HasPrefix(body, "simulation_run,"), body)
	for _, part := range []string{
		"simulation_id=sim-1",
		"stations=20",
		"run=2i",
		"ticks=35040i",
		"energy_kwh=153972",
		"concurrency_factor=55",
		"duration_ms=1500i",
	} {
		assert.Contains(t, body, part)
	}
	assert.True(t, strings.HasSuffix(body, "1735689600000000000"), body)
}

func TestInfluxSinkRecordSimulation(t *testing.T) {
	rec := &influxRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	require.NoError(t, sink.RecordSimulation(coremetrics.SimulationEvent{
		SimulationID:      "sim-2",
		Seed:              1337,
		StationCount:      1,
		Timezone:          "UTC",
		ConcurrencyFactor: 100,
		EnergyKWh:         7506,
		Time:              time.Unix(0, 0),
	}))
	require.Len(t, rec.bodies, 1)
	body := rec.bodies[0]
	assert.True(t, strings.HasPrefix(body, "simulation_result,"), body)
	assert.Contains(t, body, "timezone=UTC")
	assert.Contains(t, body, "seed=1337i")
	assert.Contains(t, body, "energy_kwh=7506")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	rec := &influxRecorder{}
	bad := httptest.NewServer(rec.handler(http.StatusServiceUnavailable))
	defer bad.Close()
	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: bad.URL, Timeout: time.Second})
	_, ok := sink.(coremetrics.NopSink)
	assert.True(t, ok, "expected NopSink on failing health check, got %T", sink)

	good := httptest.NewServer(rec.handler(http.StatusOK))
	defer good.Close()
	sink = NewInfluxSinkWithFallback(InfluxConfig{URL: good.URL, Timeout: time.Second})
	s, ok := sink.(*InfluxSink)
	require.True(t, ok, "expected InfluxSink, got %T", sink)
	_ = s.Close()
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.235, round3(1.23456))
	assert.Equal(t, 66.667, round3(66.66666666666666))
}
