// Package config provides configuration loading for OlyMatch.
// It reads a YAML file, then applies overrides from the process environment
// (optionally seeded from a .env file) so deployments can configure broker
// and store credentials without touching the config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// StorageMode represents the storage backend mode.
type StorageMode string

const (
	// StorageModeMemory uses in-memory implementations for all backends.
	StorageModeMemory StorageMode = "memory"
	// StorageModeStorage uses real backends (RabbitMQ, Redis, PostgreSQL).
	StorageModeStorage StorageMode = "storage"
)

// IsValid returns true if the storage mode is valid.
func (m StorageMode) IsValid() bool {
	return m == StorageModeMemory || m == StorageModeStorage
}

// Config represents the complete application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Worker   WorkerConfig   `yaml:"worker"`
	Rabbit   RabbitConfig   `yaml:"rabbit"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Logger   LoggerConfig   `yaml:"logger"`
}

// StorageConfig holds the storage mode configuration.
type StorageConfig struct {
	Mode StorageMode `yaml:"mode"`
}

// UseMemory returns true if in-memory backends should be used.
func (c *StorageConfig) UseMemory() bool {
	return c.Mode == StorageModeMemory
}

// ServerConfig holds HTTP server settings for the API process.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// WorkerConfig holds settings for the consumer process.
type WorkerConfig struct {
	// HealthAddress is where the worker serves /healthz and /metrics.
	HealthAddress string `yaml:"health_address"`
}

// RabbitConfig holds RabbitMQ connection and queue settings.
type RabbitConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`

	// Queue is the durable queue the like pipeline runs over.
	Queue string `yaml:"queue"`

	// Prefetch bounds unacknowledged deliveries outstanding per consumer.
	Prefetch int `yaml:"prefetch"`

	// Heartbeat is the AMQP heartbeat interval.
	Heartbeat time.Duration `yaml:"heartbeat"`

	// ConnectAttempts bounds the publisher's lazy reconnect loop. The
	// consumer retries forever regardless.
	ConnectAttempts int `yaml:"connect_attempts"`
}

// RedisConfig holds Redis connection settings for the user-existence cache.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// UserTTL is how long a cached user profile stays fresh.
	UserTTL time.Duration `yaml:"user_ttl"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int32  `yaml:"max_open_conns"`
	MaxIdleConns int32  `yaml:"max_idle_conns"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from the specified YAML file path, then applies
// environment overrides. A missing file is not an error: deployments that
// configure purely through the environment run without one.
func Load(path string) (*Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Fall through to env + defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides maps the deployment environment onto the config. The
// variable names match what the platform's provisioning already exports.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Rabbit.Host, "RMQ_HOST")
	setInt(&cfg.Rabbit.Port, "RMQ_PORT")
	setString(&cfg.Rabbit.User, "RMQ_USER")
	setString(&cfg.Rabbit.Password, "RMQ_PASS")
	setString(&cfg.Rabbit.Queue, "RMQ_QUEUE")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setInt(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASS")
	setString(&cfg.Postgres.Database, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	if v := os.Getenv("STORAGE_MODE"); v != "" {
		cfg.Storage.Mode = StorageMode(v)
	}
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Logger.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// applyDefaults sets sensible default values for configuration fields
// that are not explicitly set.
func applyDefaults(cfg *Config) {
	// Storage defaults
	if cfg.Storage.Mode == "" {
		cfg.Storage.Mode = StorageModeMemory
	}

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}

	// Worker defaults
	if cfg.Worker.HealthAddress == "" {
		cfg.Worker.HealthAddress = "0.0.0.0:8081"
	}

	// Rabbit defaults
	if cfg.Rabbit.Host == "" {
		cfg.Rabbit.Host = "localhost"
	}
	if cfg.Rabbit.Port == 0 {
		cfg.Rabbit.Port = 5672
	}
	if cfg.Rabbit.User == "" {
		cfg.Rabbit.User = "guest"
	}
	if cfg.Rabbit.Password == "" {
		cfg.Rabbit.Password = "guest"
	}
	if cfg.Rabbit.VHost == "" {
		cfg.Rabbit.VHost = "/"
	}
	if cfg.Rabbit.Queue == "" {
		cfg.Rabbit.Queue = "likes"
	}
	if cfg.Rabbit.Prefetch == 0 {
		cfg.Rabbit.Prefetch = 50
	}
	if cfg.Rabbit.Heartbeat == 0 {
		cfg.Rabbit.Heartbeat = 10 * time.Second
	}
	if cfg.Rabbit.ConnectAttempts == 0 {
		cfg.Rabbit.ConnectAttempts = 6
	}

	// Redis defaults
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.UserTTL == 0 {
		cfg.Redis.UserTTL = 5 * time.Minute
	}

	// Postgres defaults
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = "localhost"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = 25
	}
	if cfg.Postgres.MaxIdleConns == 0 {
		cfg.Postgres.MaxIdleConns = 5
	}

	// Logger defaults
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
}

// Address returns the full server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the AMQP connection URL.
func (c *RabbitConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.VHost),
	)
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
