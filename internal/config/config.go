package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name           string   `envconfig:"APP_NAME" default:"Pocket"`
		Port           int      `envconfig:"PORT" default:"8080"`
		AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	// DB is the hosted backend's Postgres. Everything in it is treated as remote.
	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"postgres"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"require"`
	}

	Cache struct {
		Path         string        `envconfig:"CACHE_PATH" default:"./data/cache.db"`
		PageSize     int           `envconfig:"SYNC_PAGE_SIZE" default:"1000"`
		SyncInterval time.Duration `envconfig:"SYNC_INTERVAL" default:"24h"`
		StatsTTL     time.Duration `envconfig:"STATS_TTL" default:"20h"`
		ReferenceTTL time.Duration `envconfig:"REFERENCE_TTL" default:"24h"`
		ListTTL      time.Duration `envconfig:"LIST_TTL" default:"6h"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	// Session identifies the signed-in user for the terminal client.
	Session struct {
		UserID string `envconfig:"SESSION_USER_ID"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port < 1 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.App.Port))
	}

	if c.Cache.Path == "" {
		errs = append(errs, errors.New("cache path is required"))
	}

	if c.Cache.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("sync page size must be positive, got %d", c.Cache.PageSize))
	}

	for name, ttl := range map[string]time.Duration{
		"sync interval": c.Cache.SyncInterval,
		"stats ttl":     c.Cache.StatsTTL,
		"reference ttl": c.Cache.ReferenceTTL,
		"list ttl":      c.Cache.ListTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, ttl))
		}
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
