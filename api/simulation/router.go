package simulation

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/kilianp07/chargesim/core/logger"
	"github.com/kilianp07/chargesim/core/monitoring"
)

// NewRouter builds the gin engine for h and wraps it with CORS handling
// for the given origins.
func NewRouter(h *Handler, origins []string) http.Handler {
	r := gin.New()
	r.Use(requestLogger(h.log), recovery())
	h.Register(r)
	r.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, "route not found", nil)
	})

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		monitoring.Current().CapturePanic(recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			Code:    http.StatusInternalServerError,
			Message: "internal error",
		})
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("http request", map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
