// Package store defines the persistence contract for stored parameter sets
// and the simulation results computed from them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/chargesim/core/simulation"
)

// ErrNotFound is returned when a parameter set or result does not exist.
var ErrNotFound = errors.New("not found")

// InputParameters is a stored description of a parking lot.
type InputParameters struct {
	ID                string    `json:"id"`
	StationPowerKW    float64   `json:"station_power_kw"`
	Consumption       float64   `json:"consumption_kwh_per_100km"`
	StationCount      int       `json:"station_count"`
	ArrivalMultiplier float64   `json:"arrival_multiplier"`
	CreatedAt         time.Time `json:"created_at"`
}

// Parameters converts the stored set into run parameters.
func (p InputParameters) Parameters() simulation.Parameters {
	return simulation.Parameters{
		StationPowerKW:    p.StationPowerKW,
		Consumption:       p.Consumption,
		StationCount:      p.StationCount,
		ArrivalMultiplier: p.ArrivalMultiplier,
	}
}

// ParametersPatch lists the fields to change; nil fields are left as is.
type ParametersPatch struct {
	StationPowerKW    *float64 `json:"station_power_kw"`
	Consumption       *float64 `json:"consumption_kwh_per_100km"`
	StationCount      *int     `json:"station_count"`
	ArrivalMultiplier *float64 `json:"arrival_multiplier"`
}

// Apply returns p with the patch applied.
func (pp ParametersPatch) Apply(p InputParameters) InputParameters {
	if pp.StationPowerKW != nil {
		p.StationPowerKW = *pp.StationPowerKW
	}
	if pp.Consumption != nil {
		p.Consumption = *pp.Consumption
	}
	if pp.StationCount != nil {
		p.StationCount = *pp.StationCount
	}
	if pp.ArrivalMultiplier != nil {
		p.ArrivalMultiplier = *pp.ArrivalMultiplier
	}
	return p
}

// SimulationRecord is one simulation computed from a parameter set. Options
// holds the simulator settings as requested, before defaults.
type SimulationRecord struct {
	ID           string            `json:"id"`
	ParametersID string            `json:"input_parameters_id"`
	Options      simulation.Config `json:"simulation_options"`
	Result       simulation.Result `json:"output"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ParametersWithResults is a parameter set with its simulation history.
type ParametersWithResults struct {
	InputParameters
	Results []SimulationRecord `json:"simulation_results"`
}

// Store persists parameter sets and simulation results. Lists are returned
// in creation order. Deleting a parameter set deletes its results.
type Store interface {
	CreateParameters(ctx context.Context, p InputParameters) (InputParameters, error)
	ListParameters(ctx context.Context) ([]InputParameters, error)
	GetParameters(ctx context.Context, id string) (InputParameters, error)
	UpdateParameters(ctx context.Context, id string, patch ParametersPatch) (InputParameters, error)
	DeleteParameters(ctx context.Context, id string) error
	AddResult(ctx context.Context, rec SimulationRecord) (SimulationRecord, error)
	ListResults(ctx context.Context, parametersID string) ([]SimulationRecord, error)
	Close() error
}

// WithResults loads a parameter set and its results.
func WithResults(ctx context.Context, s Store, id string) (ParametersWithResults, error) {
	p, err := s.GetParameters(ctx, id)
	if err != nil {
		return ParametersWithResults{}, err
	}
	recs, err := s.ListResults(ctx, id)
	if err != nil {
		return ParametersWithResults{}, err
	}
	if recs == nil {
		recs = []SimulationRecord{}
	}
	return ParametersWithResults{InputParameters: p, Results: recs}, nil
}
