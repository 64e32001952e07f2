package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL        string
	DBSchema           string
	DBAcquireTimeout   time.Duration
	DBStatementTimeout time.Duration
	DBMaxConns         int

	Pepper         string
	SessionSecret  string
	SessionMaxAge  time.Duration
	UploadRoot     string
	MaxImageSizeMB int

	RedisURL       string
	RateLimitLogin time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBSchema:    os.Getenv("DB_SCHEMA"),

		Pepper:        os.Getenv("PEPPER"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		UploadRoot:    os.Getenv("UPLOAD_ROOT"),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	// All of these are required; starting without them is a config error.
	for name, value := range map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"PEPPER":         cfg.Pepper,
		"SESSION_SECRET": cfg.SessionSecret,
		"UPLOAD_ROOT":    cfg.UploadRoot,
	} {
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	var err error
	if cfg.DBAcquireTimeout, err = parseDuration(getEnv("DB_ACQUIRE_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid DB_ACQUIRE_TIMEOUT: %w", err)
	}
	if cfg.DBStatementTimeout, err = parseDuration(getEnv("DB_STATEMENT_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid DB_STATEMENT_TIMEOUT: %w", err)
	}
	if cfg.DBMaxConns, err = strconv.Atoi(getEnv("DB_MAX_CONNS", "10")); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	if cfg.MaxImageSizeMB, err = strconv.Atoi(getEnv("MAX_IMAGE_SIZE_MB", "8")); err != nil {
		return nil, fmt.Errorf("invalid MAX_IMAGE_SIZE_MB: %w", err)
	}
	if cfg.SessionMaxAge, err = parseDuration(getEnv("SESSION_MAX_AGE", "2400h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}
	if cfg.RateLimitLogin, err = parseDuration(getEnv("RATE_LIMIT_LOGIN", "5s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
