package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"delta/internal/mail"
)

// EmailHandler sends email on behalf of the chat front end. The router only
// ever asks for details; the front end collects them and posts here.
type EmailHandler struct {
	mailer *mail.Mailer
}

func NewEmailHandler(mailer *mail.Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Handle validates the request and sends the email
func (h *EmailHandler) Handle(c *fiber.Ctx) error {
	if h.mailer == nil || !h.mailer.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Email not configured. Set DELTA_EMAIL_SENDER and DELTA_EMAIL_PASSWORD to enable sending.",
		})
	}

	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.To = strings.TrimSpace(req.To)
	if req.To == "" || !strings.Contains(req.To, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A valid recipient address is required"})
	}
	if strings.TrimSpace(req.Subject) == "" && strings.TrimSpace(req.Body) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Subject or body is required"})
	}

	if err := h.mailer.Send(req.To, req.Subject, req.Body); err != nil {
		log.Printf("⚠️  [EMAIL] Send failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to send the email right now.",
		})
	}

	return c.JSON(fiber.Map{"status": "sent"})
}
