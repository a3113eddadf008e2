package simulation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/chargesim/core/model"
)

// Result is the average of all runs of one call to Run.
type Result struct {
	TotalEnergyConsumed           float64                   `json:"total_energy_consumed_kwh"`
	TheoreticalMaximumPowerDemand float64                   `json:"theoretical_maximum_power_demand_kw"`
	ActualMaximumPowerDemand      float64                   `json:"actual_maximum_power_demand_kw"`
	ConcurrencyFactor             float64                   `json:"concurrency_factor"`
	EnergyPerChargePoint          []model.ChargePointEnergy `json:"energy_per_charge_point"`
	Runs                          []RunSummary              `json:"runs,omitempty"`
	Spread                        Spread                    `json:"spread"`
}

// RunSummary holds the outcome of a single run.
type RunSummary struct {
	Run                      int     `json:"run"`
	TotalEnergyConsumed      float64 `json:"total_energy_consumed_kwh"`
	ActualMaximumPowerDemand float64 `json:"actual_maximum_power_demand_kw"`
	ConcurrencyFactor        float64 `json:"concurrency_factor"`
}

// Spread describes how much the runs disagree. Standard deviations are
// sample deviations and are 0 for a single run.
type Spread struct {
	ConcurrencyMean   float64 `json:"concurrency_mean"`
	ConcurrencyStdDev float64 `json:"concurrency_std_dev"`
	EnergyMean        float64 `json:"energy_mean_kwh"`
	EnergyStdDev      float64 `json:"energy_std_dev_kwh"`
}

func spreadOf(runs []RunSummary) Spread {
	cf := make([]float64, len(runs))
	energy := make([]float64, len(runs))
	for i, r := range runs {
		cf[i] = r.ConcurrencyFactor
		energy[i] = r.TotalEnergyConsumed
	}
	var s Spread
	s.ConcurrencyMean, s.ConcurrencyStdDev = meanStdDev(cf)
	s.EnergyMean, s.EnergyStdDev = meanStdDev(energy)
	return s
}

func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
