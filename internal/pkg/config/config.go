package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Tokens TokenConfig
	Cookie CookieConfig
	Login  LoginConfig
	Statki StatkiConfig

	Mongo MongoConfig
	Redis RedisConfig
}

// TokenConfig holds the JWT secrets. Both are required; the process must not
// start without them.
type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,  required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,     default=1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL,    default=168h"`
}

type CookieConfig struct {
	Secure bool   `env:"COOKIE_SECURE, default=false"`
	Domain string `env:"COOKIE_DOMAIN"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type StatkiConfig struct {
	BoardTTL time.Duration `env:"STATKI_BOARD_TTL, default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=game_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether human-friendly defaults (pretty logs) apply.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
