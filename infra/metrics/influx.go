package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargesim/core/metrics"
	"github.com/kilianp07/chargesim/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes simulation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one simulation_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_run").
		AddTag("simulation_id", ev.SimulationID).
		AddTag("stations", strconv.Itoa(ev.StationCount)).
		AddField("run", ev.Run).
		AddField("ticks", ev.Ticks).
		AddField("energy_kwh", round3(ev.EnergyKWh)).
		AddField("peak_kw", round3(ev.PeakPowerKW)).
		AddField("concurrency_factor", round3(ev.ConcurrencyFactor)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSimulation writes one simulation_result point.
func (s *InfluxSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_result").
		AddTag("simulation_id", ev.SimulationID).
		AddTag("stations", strconv.Itoa(ev.StationCount)).
		AddTag("timezone", ev.Timezone).
		AddField("seed", int64(ev.Seed)).
		AddField("runs", ev.TotalRuns).
		AddField("interval_minutes", ev.IntervalMinutes).
		AddField("station_power_kw", round3(ev.StationPowerKW)).
		AddField("consumption", round3(ev.Consumption)).
		AddField("arrival_multiplier", round3(ev.ArrivalMultiplier)).
		AddField("energy_kwh", round3(ev.EnergyKWh)).
		AddField("theoretical_kw", round3(ev.TheoreticalPowerKW)).
		AddField("peak_kw", round3(ev.PeakPowerKW)).
		AddField("concurrency_factor", round3(ev.ConcurrencyFactor)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
