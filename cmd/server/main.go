package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/api"
	"github.com/maheshrc27/postqueue/internal/cache"
	"github.com/maheshrc27/postqueue/internal/hooks"
	job "github.com/maheshrc27/postqueue/internal/jobs"
	"github.com/maheshrc27/postqueue/internal/metrics"
	"github.com/maheshrc27/postqueue/internal/queue"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)

	loc, err := time.LoadLocation(cfg.Queue.Timezone)
	if err != nil {
		slog.Warn("invalid TIMEZONE, using UTC", "timezone", cfg.Queue.Timezone)
		loc = time.UTC
	}
	timers := job.NewTimers(loc)
	m := metrics.New()
	h := hooks.New()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	optionRepo := repository.NewOptionRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	queueService := service.NewQueueService(service.QueueDeps{
		Config:     cfg.Queue,
		Posts:      postRepo,
		Meta:       repository.NewPostMetaRepository(db),
		Options:    optionRepo,
		History:    repository.NewPostingHistoryRepository(db),
		Existence:  cache.NewExistenceStore(cfg.ExistenceCache, rdb),
		Timers:     timers,
		Dispatcher: queue.NewEnqueuer(client),
		Hooks:      h,
		Metrics:    m,
	})
	postService := service.NewPostService(postRepo, queueService, h)

	app := api.NewApp(api.Deps{
		Config:   *cfg,
		Auth:     service.NewAuthService(*cfg, userRepo),
		Users:    service.NewUserService(userRepo),
		Keys:     service.NewApiKeyService(apiKeyRepository),
		Posts:    postService,
		Queue:    queueService,
		Settings: service.NewSettingsService(optionRepo, queueService, h),
		Metrics:  m,
	})

	// Single events run through asynq so every instance sees them once.
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.AsynqConcurrency,
	})
	mux := asynq.NewServeMux()
	queue.NewQueue(queueService).Register(mux)

	go func() {
		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	timers.Start()
	if err := queueService.Activate(ctx); err != nil {
		slog.Error("failed to activate queue", "error", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	<-shutdownSignal()
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := queueService.Deactivate(ctx); err != nil {
		slog.Error("failed to deactivate queue", "error", err)
	}
	<-timers.Stop().Done()
	server.Shutdown()
	client.Close()
	rdb.Close()
	closeDB(db)
	log.Println("Server shutdown complete.")
}

func shutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return quit
}

func closeDB(db *repository.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}
