package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/internal/transfer"
)

type SettingsHandler struct {
	s service.SettingsService
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{s: service}
}

func (h *SettingsHandler) GetQueueSettings(c *fiber.Ctx) error {
	settings, err := h.s.GetQueueSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read queue settings",
		})
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) UpdateQueueSettings(c *fiber.Ctx) error {
	var in transfer.QueueSettingsUpdate
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	settings, err := h.s.UpdateQueueSettings(c.Context(), &in)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update queue settings",
		})
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) GetTimezone(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"timezone": h.s.GetTimezone(c.Context()),
	})
}

func (h *SettingsHandler) UpdateTimezone(c *fiber.Ctx) error {
	var in transfer.TimezoneUpdate
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if err := transfer.Validate(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown timezone",
		})
	}

	if err := h.s.UpdateTimezone(c.Context(), in.Timezone); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"timezone": in.Timezone,
	})
}
