package model

// ChargePoint is a single charging station of the lot. It charges at most
// one vehicle at a time; vehicles arriving while it is occupied wait in a
// FIFO queue.
//
// A ChargePoint has two states. Idle: nothing plugged. Occupied: one vehicle
// plugged with a countdown of remaining intervals (possibly 0) and a queue
// that may be non-empty.
type ChargePoint struct {
	maxPowerKW float64
	plugged    *Vehicle
	remaining  int
	queue      []Vehicle
	energyKWh  float64
}

// NewChargePoint creates an idle charge point rated at maxPowerKW.
func NewChargePoint(maxPowerKW float64) *ChargePoint {
	return &ChargePoint{maxPowerKW: maxPowerKW}
}

// MaxPower returns the rated power in kW.
func (c *ChargePoint) MaxPower() float64 { return c.maxPowerKW }

// Occupied reports whether a vehicle is plugged in.
func (c *ChargePoint) Occupied() bool { return c.plugged != nil }

// Plugged returns the vehicle currently plugged in, if any.
func (c *ChargePoint) Plugged() (Vehicle, bool) {
	if c.plugged == nil {
		return Vehicle{}, false
	}
	return *c.plugged, true
}

// EnergyConsumed returns the energy delivered over the lifetime of the
// charge point in kWh.
func (c *ChargePoint) EnergyConsumed() float64 { return c.energyKWh }

// RemainingIntervals returns the countdown of the plugged vehicle.
func (c *ChargePoint) RemainingIntervals() int { return c.remaining }

// QueueLen returns the number of vehicles waiting.
func (c *ChargePoint) QueueLen() int { return len(c.queue) }

// Plug connects v when the charge point is idle, otherwise v joins the tail
// of the wait queue.
func (c *ChargePoint) Plug(v Vehicle, intervalMinutes int) {
	if c.plugged != nil {
		c.queue = append(c.queue, v)
		return
	}
	c.plug(v, intervalMinutes)
}

// Tick advances the charge point by one interval. While the plugged vehicle
// still has intervals left, its energy is attributed in equal slices.
// Once the countdown reaches zero the vehicle leaves and the head of the
// queue, if any, takes its place.
func (c *ChargePoint) Tick(intervalMinutes int) {
	if c.plugged == nil {
		return
	}
	if c.remaining > 0 {
		// Recomputed on every tick: the slice must match the duration the
		// vehicle was plugged with, not the countdown.
		duration := c.plugged.ChargeDurationInIntervals(c.maxPowerKW, intervalMinutes)
		c.energyKWh += c.plugged.EnergyRequired() / float64(duration)
		c.remaining--
		return
	}
	if len(c.queue) == 0 {
		c.plugged = nil
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	c.plug(next, intervalMinutes)
}

func (c *ChargePoint) plug(v Vehicle, intervalMinutes int) {
	c.plugged = &v
	c.remaining = v.ChargeDurationInIntervals(c.maxPowerKW, intervalMinutes)
}

// ChargePointEnergy pairs the rating of a charge point with the energy it
// delivered.
type ChargePointEnergy struct {
	MaxPowerKW          float64 `json:"max_charge_speed_kw"`
	TotalEnergyConsumed float64 `json:"total_energy_consumed_kwh"`
}

// Snapshot returns the rating and delivered energy of the charge point.
func (c *ChargePoint) Snapshot() ChargePointEnergy {
	return ChargePointEnergy{MaxPowerKW: c.maxPowerKW, TotalEnergyConsumed: c.energyKWh}
}
