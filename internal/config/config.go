package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	RawLogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/quest.db"`
	WorldSeedPath  string        `env:"WORLD_SEED_PATH" envDefault:"./data/world.yaml"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"5s"`
	StartHP        int           `env:"START_HP" envDefault:"100"`

	LogLevel slog.Level `env:"-"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	switch cfg.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if cfg.HandlerTimeout <= 0 {
		return nil, fmt.Errorf("HANDLER_TIMEOUT must be positive, got %s", cfg.HandlerTimeout)
	}
	if cfg.StartHP <= 0 {
		return nil, fmt.Errorf("START_HP must be positive, got %d", cfg.StartHP)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
