package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	now     func() time.Time
}

func NewHealthHandler(checks map[string]HealthCheck, now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}

	return &HealthHandler{checks: checks, timeout: 2 * time.Second, now: now}
}

// Health reports each dependency as "up", "down" or "disabled" (a nil
// check). Any "down" service turns the response into a 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	status := "ok"
	services := make(map[string]string, len(names))

	for _, name := range names {
		check := h.checks[name]

		switch {
		case check == nil:
			services[name] = "disabled"
		case check(ctx) != nil:
			services[name] = "down"
			status = "degraded"
		default:
			services[name] = "up"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC(),
		Services:  services,
	})
}

func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", h.Health)
}
