package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"delta/internal/tasks"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	registry *tasks.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *tasks.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	pending := 0
	if h.registry != nil {
		pending = len(h.registry.List())
	}
	return c.JSON(fiber.Map{
		"status":        "healthy",
		"pending_tasks": pending,
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}
