package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/chargesim/core/metrics"
)

// PromSink records simulation events in Prometheus metrics, labeled by
// station count.
type PromSink struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	concurrency *prometheus.GaugeVec
	energy      *prometheus.GaugeVec
	peak        *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"stations"}
	runs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chargesim_runs_total",
		Help: "Number of completed yearly simulation runs",
	}, labels))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargesim_run_duration_seconds",
		Help:    "Wall time of one yearly simulation run",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, labels))
	if err != nil {
		return nil, err
	}
	concurrency, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chargesim_concurrency_factor_percent",
		Help: "Averaged concurrency factor of the latest simulation",
	}, labels))
	if err != nil {
		return nil, err
	}
	energy, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chargesim_energy_consumed_kwh",
		Help: "Averaged yearly energy of the latest simulation",
	}, labels))
	if err != nil {
		return nil, err
	}
	peak, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chargesim_peak_power_kw",
		Help: "Averaged peak power demand of the latest simulation",
	}, labels))
	if err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, duration: duration, concurrency: concurrency, energy: energy, peak: peak}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordRun counts the run and observes its duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	st := strconv.Itoa(ev.StationCount)
	s.runs.WithLabelValues(st).Inc()
	s.duration.WithLabelValues(st).Observe(ev.Duration.Seconds())
	return nil
}

// RecordSimulation sets the result gauges.
func (s *PromSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	st := strconv.Itoa(ev.StationCount)
	s.concurrency.WithLabelValues(st).Set(ev.ConcurrencyFactor)
	s.energy.WithLabelValues(st).Set(ev.EnergyKWh)
	s.peak.WithLabelValues(st).Set(ev.PeakPowerKW)
	return nil
}
