package middleware

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/pkg/utils"
)

type AuthMiddleware struct {
	k   service.ApiKeyService
	u   service.UserService
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config, k service.ApiKeyService, u service.UserService) *AuthMiddleware {
	return &AuthMiddleware{k: k, u: u, cfg: cfg}
}

// AuthMiddleware resolves the caller from the session cookie or an api_key
// query parameter and stores it in the "user" local.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		apiKey := c.Query("api_key")

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Keys or cookies",
			})
		}

		var userID int64
		if apiKey != "" {
			id, err := m.k.GetUserID(c.Context(), apiKey)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			userID = id
		} else {
			claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
			if err != nil {
				c.Cookie(&fiber.Cookie{
					Name:   m.cfg.CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})

				slog.Info("token validation failed", "error", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}
			userID, err = strconv.ParseInt(claims.UserID, 10, 64)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}
		}

		user, err := m.u.GetUserInfo(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown user",
			})
		}

		c.Locals("user_id", strconv.FormatInt(userID, 10))
		c.Locals("user", user)
		return c.Next()
	}
}

// RequireCapability rejects callers whose role lacks capability.
func RequireCapability(capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := c.Locals("user").(*models.User)
		if !user.Can(capability) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You are not allowed to do this",
			})
		}
		return c.Next()
	}
}
