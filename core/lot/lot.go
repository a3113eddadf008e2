// Package lot models a parking lot of charge points and the probabilistic
// arrival of vehicles at them.
package lot

import (
	"math"

	"github.com/kilianp07/chargesim/core/logger"
	"github.com/kilianp07/chargesim/core/model"
	"github.com/kilianp07/chargesim/core/rng"
)

// ParkingLot owns an ordered set of charge points and draws arrivals and
// demands from a shared random source. Charge points are always visited in
// the order they were added; that order is part of the determinism
// contract.
type ParkingLot struct {
	points      []*model.ChargePoint
	consumption float64
	interval    int
	src         rng.Source
	weights     ArrivalWeights
	log         logger.Logger
}

// New creates an empty lot. consumption is the kWh per 100 km used for every
// spawned vehicle and intervalMinutes the simulation step.
func New(consumption float64, intervalMinutes int, src rng.Source, log logger.Logger) *ParkingLot {
	return &ParkingLot{
		consumption: consumption,
		interval:    intervalMinutes,
		src:         src,
		weights:     DefaultArrivalWeights,
		log:         logger.OrNop(log),
	}
}

// AddChargePoint appends cp to the lot.
func (l *ParkingLot) AddChargePoint(cp *model.ChargePoint) {
	l.points = append(l.points, cp)
}

// ChargePoints returns the charge points in arrival order.
func (l *ParkingLot) ChargePoints() []*model.ChargePoint { return l.points }

// ArrivalWillOccur draws whether a vehicle arrives at one charge point during
// the given hour. multiplier is a percentage clamped to [20,200] applied to
// the base weight. Hours outside 0..23 are logged and yield no arrival
// without consuming a draw.
func (l *ParkingLot) ArrivalWillOccur(hour int, multiplier float64) bool {
	if hour < 0 || hour >= len(l.weights) {
		l.log.Warnf("invalid hour %d: arrival probability lookup failed", hour)
		return false
	}
	m := math.Max(MinArrivalMultiplier, math.Min(multiplier, MaxArrivalMultiplier))
	adjusted := l.weights[hour] * (m / 100)
	// Percent probabilities scaled by 100 compare against an integer draw.
	threshold := adjusted * 100
	draw := math.Floor(rng.Range(l.src, 0, probabilityScale))
	return draw < threshold
}

// SampleDemandDistance draws a charging demand in km from the empirical
// demand distribution.
func (l *ParkingLot) SampleDemandDistance() float64 {
	draw := int(math.Floor(rng.Range(l.src, 0, probabilityScale)))
	return demandForDraw(draw)
}

// StepArrivals visits every charge point in order, drawing once for an
// arrival and, when one occurs, once more for its demand.
func (l *ParkingLot) StepArrivals(hour int, multiplier float64) {
	for _, cp := range l.points {
		if !l.ArrivalWillOccur(hour, multiplier) {
			continue
		}
		v := model.NewVehicle(l.SampleDemandDistance(), l.consumption)
		cp.Plug(v, l.interval)
	}
}

// StepDepartures advances every charge point by one interval.
func (l *ParkingLot) StepDepartures() {
	for _, cp := range l.points {
		cp.Tick(l.interval)
	}
}

// TotalEnergyConsumed sums the energy delivered by all charge points.
func (l *ParkingLot) TotalEnergyConsumed() float64 {
	total := 0.0
	for _, cp := range l.points {
		total += cp.EnergyConsumed()
	}
	return total
}

// TheoreticalMaxPower is the power drawn if every charge point charged at
// once.
func (l *ParkingLot) TheoreticalMaxPower() float64 {
	total := 0.0
	for _, cp := range l.points {
		total += cp.MaxPower()
	}
	return total
}

// InstantaneousPower sums the rating of occupied charge points.
func (l *ParkingLot) InstantaneousPower() float64 {
	total := 0.0
	for _, cp := range l.points {
		if cp.Occupied() {
			total += cp.MaxPower()
		}
	}
	return total
}

// EnergyPerChargePoint returns one snapshot per charge point in lot order.
func (l *ParkingLot) EnergyPerChargePoint() []model.ChargePointEnergy {
	out := make([]model.ChargePointEnergy, len(l.points))
	for i, cp := range l.points {
		out[i] = cp.Snapshot()
	}
	return out
}
