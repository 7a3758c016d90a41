package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"jobfair-live/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := gin.H{}
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, httpdto.Response[gin.H]{
			Success: false,
			Data:    status,
			Error:   "unhealthy",
			Code:    "UNHEALTHY",
		})
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
}
