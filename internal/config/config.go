package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Closer"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		Driver     string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"data/closer.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"closer"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Demo struct {
		Enabled bool `envconfig:"DEMO_MODE" default:"false"`
	}

	Auth struct {
		// Empty disables bearer authentication.
		Secret string `envconfig:"AUTH_SECRET"`
	}

	Backup struct {
		Bucket          string `envconfig:"BACKUP_S3_BUCKET"`
		Region          string `envconfig:"BACKUP_S3_REGION" default:"us-east-1"`
		Endpoint        string `envconfig:"BACKUP_S3_ENDPOINT"`
		PathStyle       bool   `envconfig:"BACKUP_S3_PATH_STYLE" default:"false"`
		AccessKeyID     string `envconfig:"BACKUP_S3_ACCESS_KEY_ID"`
		SecretAccessKey string `envconfig:"BACKUP_S3_SECRET_ACCESS_KEY"`
		// Cron expression, e.g. "@daily". Empty disables scheduled backups.
		Schedule string `envconfig:"BACKUP_SCHEDULE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// BackupsEnabled reports whether an S3 bucket is configured.
func (c *Config) BackupsEnabled() bool {
	return c.Backup.Bucket != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}
