package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/chargesim/core/simulation"
)

// Bounds is an inclusive range. A nil bound is unchecked.
type Bounds struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

func (b Bounds) contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

func (b Bounds) String() string {
	lo, hi := "-inf", "+inf"
	if b.Min != nil {
		lo = fmt.Sprint(*b.Min)
	}
	if b.Max != nil {
		hi = fmt.Sprint(*b.Max)
	}
	return "[" + lo + ", " + hi + "]"
}

// Expected lists the checks applied to a scenario's result. Exact values
// are compared within Tolerance.
type Expected struct {
	ConcurrencyFactor   *float64  `yaml:"concurrency_factor,omitempty"`
	TotalEnergyKWh      *float64  `yaml:"total_energy_kwh,omitempty"`
	PeakPowerKW         *float64  `yaml:"peak_power_kw,omitempty"`
	TheoreticalPowerKW  *float64  `yaml:"theoretical_power_kw,omitempty"`
	EnergyPerStationKWh []float64 `yaml:"energy_per_station_kwh,omitempty"`
	Concurrency         Bounds    `yaml:"concurrency"`
	Energy              Bounds    `yaml:"energy"`
	Tolerance           float64   `yaml:"tolerance,omitempty"`
}

// Scenario is a named simulation with the checks its result must pass.
type Scenario struct {
	Name        string                `yaml:"name"`
	Description string                `yaml:"description,omitempty"`
	Config      simulation.Config     `yaml:"config"`
	Parameters  simulation.Parameters `yaml:"parameters"`
	Expected    Expected              `yaml:"expected"`
}

// Load reads a single scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)
	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
