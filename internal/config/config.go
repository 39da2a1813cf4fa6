// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds every runtime setting of the server.
type Config struct {
	HTTPPort string `env:"PORT" envDefault:"8080"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret          string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	ConsultantUsername string        `env:"CONSULTANT_USERNAME" envDefault:"consultant"`
	ConsultantPassword string        `env:"CONSULTANT_PASSWORD" envDefault:"consultant123"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	ResultCacheTTL time.Duration `env:"RESULT_CACHE_TTL" envDefault:"5m"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
