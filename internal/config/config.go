// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Mailer drivers.
const (
	MailerLog    = "log"
	MailerKafka  = "kafka"
	MailerMemory = "memory"
)

// Notification failure policies.
const (
	NotifyFail   = "fail"
	NotifyIgnore = "ignore"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Mailer   MailerConfig
	Log      LogConfig `envPrefix:"LOG_"`
	Otel     OtelConfig `envPrefix:"OTEL_"`

	NotifyFailurePolicy string `env:"NOTIFY_FAILURE_POLICY" envDefault:"fail"`
	SeedFile            string `env:"SEED_FILE"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `env:"PORT"                 envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"  envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT"  envDefault:"60s"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH"    envDefault:"webinars.db"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"HOST"      envDefault:"localhost"`
	Port     string `env:"PORT"      envDefault:"5432"`
	User     string `env:"USER"      envDefault:"postgres"`
	Password string `env:"PASSWORD"  envDefault:"postgres"`
	Name     string `env:"NAME"      envDefault:"webinars"`
	SSLMode  string `env:"SSLMODE"   envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"20"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MailerConfig selects how organizer notifications leave the process.
type MailerConfig struct {
	Driver       string   `env:"MAILER_DRIVER" envDefault:"log"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"   envDefault:"webinar-notifications"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// OtelConfig controls tracing. Tracing is disabled when Endpoint is empty.
type OtelConfig struct {
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"webinar-seats"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch c.Storage.Driver {
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres storage"))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	switch c.Mailer.Driver {
	case MailerLog, MailerMemory:
	case MailerKafka:
		if len(c.Mailer.KafkaBrokers) == 0 || c.Mailer.KafkaTopic == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required for kafka mailer"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAILER_DRIVER %q", c.Mailer.Driver))
	}

	switch c.NotifyFailurePolicy {
	case NotifyFail, NotifyIgnore:
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFY_FAILURE_POLICY %q", c.NotifyFailurePolicy))
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
