package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/anamaak-service/internal/persistence"
)

// HealthHandler reports service status and dependency reachability.
type HealthHandler struct {
	serviceName string
	version     string
	environment string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, environment string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		environment: environment,
		postgres:    postgres,
		redis:       redis,
	}
}

// Check GET /api/health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	services := fiber.Map{}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		services["postgres"] = err.Error()
		healthy = false
	} else {
		services["postgres"] = "ok"
	}

	if err := h.redis.Ping(ctx); err != nil {
		services["redis"] = err.Error()
		healthy = false
	} else {
		services["redis"] = "ok"
	}

	body := fiber.Map{
		"success":     healthy,
		"message":     "API AnaMaaK opérationnelle",
		"service":     h.serviceName,
		"version":     h.version,
		"environment": h.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"services":    services,
	}
	if !healthy {
		body["message"] = "Un ou plusieurs services sont indisponibles"
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
