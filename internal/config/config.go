package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	AppEnv   string     `env:"APP_ENV" envDefault:"development"`

	DataDir       string `env:"DATA_DIR" envDefault:"data"`
	ConfigBackend string `env:"CONFIG_BACKEND" envDefault:"file"`
	DBPath        string `env:"DB_PATH" envDefault:"data/eastertrail.db"`
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisKey      string `env:"REDIS_KEY" envDefault:"eastertrail:site-config"`

	UploadsDir string `env:"UPLOADS_DIR" envDefault:"public/uploads"`
	SPADir     string `env:"SPA_DIR" envDefault:"../web/dist"`

	AdminPassword     string `env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	SessionSecret     string `env:"SESSION_SECRET"`

	PlaySessionTTL time.Duration `env:"PLAY_SESSION_TTL" envDefault:"2h"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

func (c *Config) Production() bool { return c.AppEnv == "production" }

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	switch cfg.ConfigBackend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("CONFIG_BACKEND %q: want file, sqlite or redis", cfg.ConfigBackend)
	}
	if cfg.PlaySessionTTL <= 0 {
		return nil, fmt.Errorf("PLAY_SESSION_TTL must be positive")
	}
	return &cfg, nil
}
