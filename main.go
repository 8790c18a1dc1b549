package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmobiliaria/internal/cache"
	"inmobiliaria/internal/config"
	"inmobiliaria/internal/db"
	"inmobiliaria/internal/logger"
	"inmobiliaria/internal/router"
	"inmobiliaria/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.LogLevel, cfg.Environment)
	log.Info().Str("env", cfg.Environment).Msg("Starting application")

	database, err := db.InitDB(cfg.DBUrl, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer database.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database, log); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}

	deps := router.Dependencies{}
	if cfg.Storage.Configured() {
		store, err := storage.NewMinioStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Image storage initialization failed")
		}
		deps.Storage = store
	} else {
		log.Warn().Msg("Image storage credentials missing, uploads disabled")
	}

	if views := viewDeduper(ctx, cfg, log); views != nil {
		defer views.Close()
		deps.Views = views
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(&cfg, database, deps, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

// viewDeduper returns nil when dedup is off or redis is unreachable; views are
// then counted on every fetch.
func viewDeduper(ctx context.Context, cfg config.Config, log zerolog.Logger) *cache.ViewDeduper {
	if cfg.RedisAddr == "" || cfg.ViewDedupWindow <= 0 {
		return nil
	}
	views, err := cache.NewViewDeduper(ctx, cfg.RedisAddr, cfg.ViewDedupWindow, log)
	if err != nil {
		log.Warn().Err(err).Msg("View dedup disabled")
		return nil
	}
	return views
}
