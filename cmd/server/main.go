package main

import (
	"fmt"
	"log/slog"
	"os"

	"expo_backend/internal/app/router"
	"expo_backend/internal/config"
	"expo_backend/internal/feature/registration/adapters"
	reghandler "expo_backend/internal/feature/registration/transport/handler"
	"expo_backend/internal/feature/registration/usecase"
	infradb "expo_backend/internal/platform/db"
	"expo_backend/internal/platform/storage"
)

func main() {
	cfg := config.Load()

	// Structured JSON logging; debug level in development.
	level := slog.LevelInfo
	if cfg.Env == "dev" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// db
	db := infradb.OpenDB()

	// Brochure storage
	store, err := storage.NewLocalBrochureStore(cfg.StorageDir, logger)
	if err != nil {
		logger.Error("failed to init brochure storage", "error", err)
		os.Exit(1)
	}

	// Repository
	userRepo := adapters.NewUserGorm(db)

	// Usecase
	registerUC := usecase.NewRegisterUsecase(userRepo, store, logger)

	// Handler
	registerH := reghandler.NewRegisterHandler(registerUC)

	r := router.NewRouter(registerH, cfg)

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
