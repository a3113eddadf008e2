package model

import "math"

// Vehicle represents an electric vehicle arriving at the lot with a charging
// demand expressed as a distance to replenish.
//
// The type performs no validation: demand is expected to be >= 0 and the
// consumption rate > 0. Guarding against NaN or negative inputs is left to
// the caller.
type Vehicle struct {
	demandKm       float64 // distance to replenish in km
	consumptionKWh float64 // consumption in kWh per 100 km
}

// NewVehicle creates a vehicle needing demandKm of range at the given
// consumption (kWh per 100 km).
func NewVehicle(demandKm, consumptionPer100Km float64) Vehicle {
	return Vehicle{demandKm: demandKm, consumptionKWh: consumptionPer100Km}
}

// DemandKm returns the charging demand in km.
func (v Vehicle) DemandKm() float64 { return v.demandKm }

// ConsumptionPer100Km returns the consumption rate in kWh per 100 km.
func (v Vehicle) ConsumptionPer100Km() float64 { return v.consumptionKWh }

// EnergyRequired returns the energy in kWh needed to cover the demand.
func (v Vehicle) EnergyRequired() float64 {
	return v.demandKm * (v.consumptionKWh / 100)
}

// ChargeDurationInIntervals returns how many simulation intervals the vehicle
// occupies a charge point of maxPowerKW. The charge time is floored to whole
// hours before being converted to intervals, so a vehicle needing less than
// one hour of charging yields 0.
func (v Vehicle) ChargeDurationInIntervals(maxPowerKW float64, intervalMinutes int) int {
	hours := int(math.Floor(v.EnergyRequired() / maxPowerKW))
	return hours * 60 / intervalMinutes
}
