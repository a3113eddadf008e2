package simulation

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/chargesim/core/monitoring"
	sim "github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/core/store"
)

// Response is the envelope of every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Code: code, Message: message, Data: data})
}

func badRequest(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, err.Error(), nil)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrInvalidInterval),
		errors.Is(err, sim.ErrInvalidTimezone),
		errors.Is(err, sim.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		monitoring.CaptureException(err, map[string]string{"route": c.FullPath()})
		respond(c, code, "internal error", nil)
		return
	}
	respond(c, code, err.Error(), nil)
}
