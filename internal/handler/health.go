package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/covidtimeseries/metadata/internal/pkg/circuitbreaker"
)

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cache     Pinger
	breaker   *circuitbreaker.CircuitBreaker
	endpoint  string
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. cache and breaker may be
// nil when the deployment runs without them.
func NewHealthHandler(
	cache Pinger,
	breaker *circuitbreaker.CircuitBreaker,
	endpoint string,
	version string,
) *HealthHandler {
	return &HealthHandler{
		cache:     cache,
		breaker:   breaker,
		endpoint:  endpoint,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthStatus represents health check status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Registry  string                 `json:"registry"`
	Checks    map[string]string      `json:"checks"`
	Circuit   map[string]interface{} `json:"circuit,omitempty"`
}

// Health handles GET /health. An open registry circuit degrades the
// service; an unreachable cache makes it unhealthy.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Registry:  h.endpoint,
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks["redis"] = "unhealthy: " + err.Error()
		} else {
			status.Checks["redis"] = "healthy"
		}
	}

	if h.breaker != nil {
		state := h.breaker.State()
		status.Checks["registry_circuit"] = state.String()
		status.Circuit = h.breaker.Stats()
		if state != circuitbreaker.StateClosed && status.Status == "healthy" {
			status.Status = "degraded"
		}
	}

	statusCode := fiber.StatusOK
	if status.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(status)
}

// Liveness handles GET /livez - basic liveness probe
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Readiness handles GET /readyz - readiness probe
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"reason": "redis unavailable",
			})
		}
	}

	if h.breaker != nil && h.breaker.State() == circuitbreaker.StateOpen {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"reason": "registry circuit open",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/livez", h.Liveness)
	app.Get("/readyz", h.Readiness)
	app.Get("/version", h.Version)
}
