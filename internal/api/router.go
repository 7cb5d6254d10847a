package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/api/handlers"
	"github.com/maheshrc27/postqueue/internal/api/middleware"
	"github.com/maheshrc27/postqueue/internal/metrics"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/service"
)

type Deps struct {
	Config   config.Config
	Auth     service.AuthService
	Users    service.UserService
	Keys     service.ApiKeyService
	Posts    service.PostService
	Queue    service.QueueService
	Settings service.SettingsService
	Metrics  *metrics.Metrics
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("request failed", "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == d.Config.FrontendURL
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	auth := handlers.NewAuthHandler(d.Config, d.Auth)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	authMiddleware := middleware.NewAuthMiddleware(d.Config, d.Keys, d.Users)
	editPosts := middleware.RequireCapability(models.CapEditPosts)
	publishPosts := middleware.RequireCapability(models.CapPublishPosts)
	manageOptions := middleware.RequireCapability(models.CapManageOptions)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(d.Users)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/users/:id/role", manageOptions, user.SetRole)

	nonce := handlers.NewNonceHandler(d.Config.SecretKey, d.Config.NonceTTL)
	api.Get("/nonce", nonce.Issue)

	apiKeys := handlers.NewApiKeyHandler(d.Keys)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Delete("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(d.Posts, d.Config.SecretKey)
	api.Get("/posts/queue", publishPosts, post.ToggleQueue)
	api.Post("/posts", editPosts, post.CreatePost)
	api.Get("/posts", editPosts, post.ListPosts)
	api.Get("/posts/:id", editPosts, post.GetPost)
	api.Put("/posts/:id", editPosts, post.UpdatePost)
	api.Delete("/posts/:id", editPosts, post.TrashPost)

	queue := handlers.NewQueueHandler(d.Queue, d.Posts, d.Config.SecretKey)
	api.Post("/queue/reorder", queue.Reorder)
	api.Get("/queue/:type", editPosts, queue.ListQueued)

	settings := handlers.NewSettingsHandler(d.Settings)
	api.Get("/settings/queue", manageOptions, settings.GetQueueSettings)
	api.Post("/settings/queue", manageOptions, settings.UpdateQueueSettings)
	api.Get("/settings/timezone", manageOptions, settings.GetTimezone)
	api.Post("/settings/timezone", manageOptions, settings.UpdateTimezone)

	return app
}
