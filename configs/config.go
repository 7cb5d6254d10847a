package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Queue struct {
	Status         string
	PostTypes      []string
	UnqueuedStatus string
	ExistenceTTL   time.Duration
	Timezone       string
}

type Config struct {
	Port               string
	DatabaseDriver     string
	PostgresURI        string
	SQLitePath         string
	RedisURI           string
	ExistenceCache     string
	FrontendURL        string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	SecretKey          string
	AdminEmails        []string
	CookieName         string
	NonceTTL           time.Duration
	AsynqConcurrency   int
	Queue              Queue
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.PostgresURI
}

func LoadConfig() *Config {
	return &Config{
		Port:               getEnv("PORT", "3000"),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "postgres"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "postqueue.db"),
		RedisURI:           getEnv("REDIS_URI", "127.0.0.1:6379"),
		ExistenceCache:     getEnv("EXISTENCE_CACHE", "redis"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		SecretKey:          getEnv("SECRET_KEY", ""),
		AdminEmails:        getEnvEmails("ADMIN_EMAILS"),
		CookieName:         getEnv("COOKIE_NAME", "ptq_session"),
		NonceTTL:           getEnvDuration("NONCE_TTL", 12*time.Hour),
		AsynqConcurrency:   getEnvInt("ASYNQ_CONCURRENCY", 2),
		Queue: Queue{
			Status:         SanitizeKey(getEnv("QUEUE_STATUS", "queue")),
			PostTypes:      getEnvList("QUEUE_POST_TYPES", []string{"post", "page"}),
			UnqueuedStatus: SanitizeKey(getEnv("QUEUE_UNQUEUED_STATUS", "draft")),
			ExistenceTTL:   getEnvDuration("QUEUE_EXISTENCE_TTL", time.Hour),
			Timezone:       getEnv("TIMEZONE", "UTC"),
		},
	}
}

// SanitizeKey lowercases s and keeps only [a-z0-9_-].
func SanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", slog.String("key", key), slog.String("value", value))
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment", slog.String("key", key), slog.String("value", value))
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = SanitizeKey(strings.TrimSpace(item)); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// getEnvEmails reads a comma separated list of lowercased addresses.
func getEnvEmails(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			list = append(list, item)
		}
	}
	return list
}
