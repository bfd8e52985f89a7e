package handlers

import (
	"github.com/gofiber/fiber/v2"

	"delta/internal/history"
)

// TranscriptHandler serves the persisted chat transcript
type TranscriptHandler struct {
	store *history.Store
}

func NewTranscriptHandler(store *history.Store) *TranscriptHandler {
	return &TranscriptHandler{store: store}
}

// Handle returns the most recent transcript entries in chronological order
func (h *TranscriptHandler) Handle(c *fiber.Ctx) error {
	if h.store == nil {
		return c.JSON(fiber.Map{"entries": []any{}})
	}

	limit := c.QueryInt("limit", 50)
	entries, err := h.store.Recent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load transcript",
		})
	}
	return c.JSON(fiber.Map{"entries": entries})
}
