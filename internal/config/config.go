// Package config loads the application configuration from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings.
type Config struct {
	// Env is the deployment environment ("dev", "prod").
	Env string
	// Port is the HTTP listen port.
	Port int
	// StorageDir is the base directory for publicly served uploads.
	StorageDir string
	// AllowedOrigins lists the origins that may call the API cross-origin.
	AllowedOrigins []string
}

// Load reads the configuration, pulling in a .env file first when present.
func Load() Config {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	return Config{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnvInt("PORT", 8080),
		StorageDir:     getEnv("STORAGE_DIR", "var/storage"),
		AllowedOrigins: allowedOrigins(),
	}
}

// allowedOrigins builds the CORS allowlist: the configured frontend URL
// plus the fixed local development origins.
func allowedOrigins() []string {
	return []string{
		getEnv("FRONTEND_URL", "http://localhost:5173"),
		"http://localhost:3000",
		"http://localhost:8080",
		"http://127.0.0.1:5173",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if num, err := strconv.Atoi(v); err == nil {
			return num
		}
	}
	return fallback
}
