package metrics

import "time"

// RunEvent is emitted once per completed Monte Carlo run.
type RunEvent struct {
	SimulationID      string
	Run               int
	StationCount      int
	Ticks             int
	EnergyKWh         float64
	PeakPowerKW       float64
	ConcurrencyFactor float64 // percent
	Duration          time.Duration
	Time              time.Time
}

// SimulationEvent is emitted after all runs of a simulation are averaged.
type SimulationEvent struct {
	SimulationID       string
	Seed               uint32
	TotalRuns          int
	IntervalMinutes    int
	Timezone           string
	StationCount       int
	StationPowerKW     float64
	Consumption        float64
	ArrivalMultiplier  float64
	EnergyKWh          float64
	TheoreticalPowerKW float64
	PeakPowerKW        float64
	ConcurrencyFactor  float64 // percent
	Duration           time.Duration
	Time               time.Time
}

// MetricsSink records averaged simulation results.
type MetricsSink interface {
	RecordSimulation(ev SimulationEvent) error
}

// RunRecorder is implemented by sinks able to record individual runs.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// Closer is implemented by sinks holding resources that must be released.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSimulation(SimulationEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error               { return nil }
