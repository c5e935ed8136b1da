// Package db opens the application database connection.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"expo_backend/internal/feature/registration/domain/entity"
)

// retryInterval is the pause between connection attempts.
const retryInterval = 3 * time.Second

// Config holds the database connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LoadConfigFromEnv reads the connection settings from the environment,
// with defaults suitable for local development.
func LoadConfigFromEnv() Config {
	return Config{
		Host:     getEnv("DB_HOST", "127.0.0.1"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "expo"),
		Password: getEnv("DB_PASSWORD", "expo"),
		Name:     getEnv("DB_NAME", "expo"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// BuildDSN builds the postgres DSN from the given config.
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// Opener opens a gorm.DB for a DSN. Swappable in tests.
type Opener func(dsn string) (*gorm.DB, error)

// OpenPostgres opens a postgres-backed gorm.DB. TranslateError is enabled so
// unique constraint violations surface as gorm.ErrDuplicatedKey for the
// repository layer to map.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(gpostgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// ConnectWithRetry keeps attempting to connect until the timeout elapses.
// The database container often comes up after the application in local and
// containerized deployments.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenDB connects to the configured database and optionally runs the schema
// migration. It terminates the process when the database stays unreachable.
func OpenDB() *gorm.DB {
	dsn := BuildDSN(LoadConfigFromEnv())

	db, err := ConnectWithRetry(dsn, 60*time.Second, OpenPostgres)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&entity.User{},
			&entity.Company{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
