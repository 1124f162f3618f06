package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	LogLevel      string
	LogJSON       bool
	AllowedOrigin string

	// Gameplay timing
	TurnTimeout          time.Duration // budget the acting player has between taps
	TimeoutCheckInterval time.Duration // timeout monitor tick

	// Connection rate limiting
	WSRateLimit  int
	WSRateWindow time.Duration
	RedisAddr    string
	RedisPass    string
	RedisDB      int
}

// Load reads configuration from the environment, with .env support for
// local development. Every value has a default; nothing is required.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	turnTimeout := 10 * time.Second
	if v := os.Getenv("TURN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			turnTimeout = time.Duration(n) * time.Second
		}
	}

	checkInterval := time.Second
	if v := os.Getenv("TIMEOUT_CHECK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			checkInterval = time.Duration(n) * time.Millisecond
		}
	}

	wsRateLimit := 30
	if v := os.Getenv("WS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			wsRateLimit = n
		}
	}

	wsRateWindow := time.Minute
	if v := os.Getenv("WS_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			wsRateWindow = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	return &Config{
		AppPort:              port,
		LogLevel:             logLevel,
		LogJSON:              os.Getenv("LOG_JSON") == "true",
		AllowedOrigin:        os.Getenv("ALLOWED_ORIGIN"),
		TurnTimeout:          turnTimeout,
		TimeoutCheckInterval: checkInterval,
		WSRateLimit:          wsRateLimit,
		WSRateWindow:         wsRateWindow,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              redisDB,
	}
}
