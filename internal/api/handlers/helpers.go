package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(id, 10, 64)
	return userID
}

func GetUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// serviceError maps the service sentinel errors to a status and message.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrInvalidNonce):
		status = fiber.StatusForbidden
	case errors.Is(err, service.ErrNotQueueable):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
