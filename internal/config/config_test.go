package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"APP_ENV", "PORT", "STORAGE_DIR", "FRONTEND_URL"} {
			t.Setenv(key, "")
		}

		cfg := Load()

		assert.Equal(t, "dev", cfg.Env)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "var/storage", cfg.StorageDir)
		assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
		assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_ENV", "prod")
		t.Setenv("PORT", "9090")
		t.Setenv("STORAGE_DIR", "/srv/storage")
		t.Setenv("FRONTEND_URL", "https://expo.example.com")

		cfg := Load()

		assert.Equal(t, "prod", cfg.Env)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, "/srv/storage", cfg.StorageDir)
		assert.Contains(t, cfg.AllowedOrigins, "https://expo.example.com")
	})

	t.Run("invalid port falls back to the default", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")

		cfg := Load()

		assert.Equal(t, 8080, cfg.Port)
	})
}
