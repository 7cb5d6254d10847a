package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/maheshrc27/postqueue/pkg/utils"
)

// Nonce actions.
const (
	NonceToggle  = "post-to-queue"
	NonceReorder = "ptq-reorder-nonce"
)

type NonceHandler struct {
	secret string
	ttl    time.Duration
}

func NewNonceHandler(secret string, ttl time.Duration) *NonceHandler {
	return &NonceHandler{secret: secret, ttl: ttl}
}

func (h *NonceHandler) Issue(c *fiber.Ctx) error {
	var req transfer.NonceRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse query",
		})
	}
	if err := transfer.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown action",
		})
	}

	nonce, err := utils.GenerateNonce(h.secret, req.Action, GetUserID(c), h.ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create nonce",
		})
	}
	return c.JSON(fiber.Map{
		"action": req.Action,
		"nonce":  nonce,
	})
}
