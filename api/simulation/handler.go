// Package simulation exposes stored parameter sets and on-demand
// simulations over HTTP.
package simulation

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kilianp07/chargesim/core/logger"
	sim "github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/core/store"
)

// Handler serves the parameter and simulation endpoints.
type Handler struct {
	store    store.Store
	defaults sim.Parameters
	simOpts  []sim.Option
	log      logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaults sets the values used for fields omitted on create.
func WithDefaults(p sim.Parameters) Option {
	return func(h *Handler) { h.defaults = p }
}

// WithSimulatorOptions are passed to every simulator the handler builds.
func WithSimulatorOptions(opts ...sim.Option) Option {
	return func(h *Handler) { h.simOpts = append(h.simOpts, opts...) }
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) { h.log = logger.OrNop(l) }
}

// NewHandler returns a Handler backed by st.
func NewHandler(st store.Store, opts ...Option) *Handler {
	h := &Handler{store: st, log: logger.Nop{}}
	for _, o := range opts {
		o(h)
	}
	h.defaults.SetDefaults()
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/parameters", h.ListParameters)
	r.POST("/parameters", h.CreateParameters)
	r.GET("/parameters/:id", h.GetParameters)
	r.PATCH("/parameters/:id", h.UpdateParameters)
	r.DELETE("/parameters/:id", h.DeleteParameters)
	r.POST("/simulation", h.RunSimulation)
}

type createParametersRequest struct {
	StationPowerKW    *float64 `json:"station_power_kw" binding:"omitempty,gt=0"`
	Consumption       *float64 `json:"consumption_kwh_per_100km" binding:"omitempty,gt=0"`
	StationCount      int      `json:"station_count" binding:"required,gt=0"`
	ArrivalMultiplier *float64 `json:"arrival_multiplier" binding:"omitempty,gt=0"`
}

type updateParametersRequest struct {
	StationPowerKW    *float64 `json:"station_power_kw" binding:"omitempty,gt=0"`
	Consumption       *float64 `json:"consumption_kwh_per_100km" binding:"omitempty,gt=0"`
	StationCount      *int     `json:"station_count" binding:"omitempty,gt=0"`
	ArrivalMultiplier *float64 `json:"arrival_multiplier" binding:"omitempty,gt=0"`
}

type simulationRequest struct {
	InputParametersID string `json:"input_parameters_id" binding:"required,uuid"`
	Seed              uint32 `json:"seed"`
	TotalRuns         int    `json:"total_runs" binding:"gte=0,lte=1000"`
	Interval          int    `json:"interval" binding:"gte=0,lte=60"`
	Timezone          string `json:"timezone"`
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	respond(c, http.StatusOK, "ok", nil)
}

// ListParameters handles GET /parameters.
func (h *Handler) ListParameters(c *gin.Context) {
	list, err := h.store.ListParameters(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", list)
}

// CreateParameters handles POST /parameters.
func (h *Handler) CreateParameters(c *gin.Context) {
	var req createParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := store.InputParameters{
		StationPowerKW:    valueOr(req.StationPowerKW, h.defaults.StationPowerKW),
		Consumption:       valueOr(req.Consumption, h.defaults.Consumption),
		StationCount:      req.StationCount,
		ArrivalMultiplier: valueOr(req.ArrivalMultiplier, h.defaults.ArrivalMultiplier),
	}
	created, err := h.store.CreateParameters(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "created", created)
}

// GetParameters handles GET /parameters/:id and includes the stored
// results.
func (h *Handler) GetParameters(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	out, err := store.WithResults(c.Request.Context(), h.store, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", out)
}

// UpdateParameters handles PATCH /parameters/:id.
func (h *Handler) UpdateParameters(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch := store.ParametersPatch{
		StationPowerKW:    req.StationPowerKW,
		Consumption:       req.Consumption,
		StationCount:      req.StationCount,
		ArrivalMultiplier: req.ArrivalMultiplier,
	}
	ctx := c.Request.Context()
	if _, err := h.store.UpdateParameters(ctx, id, patch); err != nil {
		h.fail(c, err)
		return
	}
	out, err := store.WithResults(ctx, h.store, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "updated", out)
}

// DeleteParameters handles DELETE /parameters/:id.
func (h *Handler) DeleteParameters(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteParameters(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "deleted", nil)
}

// RunSimulation handles POST /simulation. The simulation runs
// synchronously and its result is stored with the parameter set.
func (h *Handler) RunSimulation(c *gin.Context) {
	var req simulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	params, err := h.store.GetParameters(ctx, req.InputParametersID)
	if err != nil {
		h.fail(c, err)
		return
	}

	opts := sim.Config{
		Seed:            req.Seed,
		TotalRuns:       req.TotalRuns,
		IntervalMinutes: req.Interval,
		Timezone:        req.Timezone,
	}
	s, err := sim.New(opts, h.simOpts...)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := s.RunContext(ctx, params.Parameters())
	if err != nil {
		h.fail(c, err)
		return
	}
	rec, err := h.store.AddResult(ctx, store.SimulationRecord{
		ParametersID: params.ID,
		Options:      opts,
		Result:       res,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Infof("simulation %s on parameters %s: concurrency %.2f%%", rec.ID, params.ID, res.ConcurrencyFactor)
	respond(c, http.StatusCreated, "simulation completed", rec)
}

func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, fmt.Errorf("invalid id %q", id))
		return "", false
	}
	return id, true
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
