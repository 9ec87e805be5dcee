package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Storage StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:""`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"0"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AuthConfig holds token issuing settings.
type AuthConfig struct {
	Secret   string        `envconfig:"AUTH_SECRET" default:""`
	TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"168h"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type string `envconfig:"STORAGE_TYPE" default:"memory"` // memory, sqlite, or redis

	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/grandline.db"`

	RedisURL          string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPoolSize     int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
	RedisMinIdleConns int    `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
