package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harbinger-games/harbinger/internal/shared/logger"
	"github.com/harbinger-games/harbinger/internal/shared/utils"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	checks map[string]HealthCheck
	logger logger.Interface
}

func NewHealthHandler(checks map[string]HealthCheck, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// Health handles GET /health
// @Summary Health check
// @Description Report database and Redis reachability
// @Tags health
// @Produce json
// @Success 200 {object} utils.APIResponse{data=HealthResponse}
// @Failure 503 {object} utils.APIResponse{data=HealthResponse}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warnw("health check failed", "check", name, "error", err)
			resp.Status = "degraded"
			resp.Checks[name] = "down"
			continue
		}
		resp.Checks[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	utils.SuccessResponse(c, status, "", resp)
}
