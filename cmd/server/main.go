package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/tubesweep/tubesweep/internal/auth"
	"github.com/tubesweep/tubesweep/internal/classifier"
	"github.com/tubesweep/tubesweep/internal/config"
	"github.com/tubesweep/tubesweep/internal/metrics"
	"github.com/tubesweep/tubesweep/internal/pipeline"
	"github.com/tubesweep/tubesweep/internal/scheduler"
	"github.com/tubesweep/tubesweep/internal/server"
	"github.com/tubesweep/tubesweep/internal/store"
	"github.com/tubesweep/tubesweep/internal/youtube"
)

func main() {
	slog.Info("Starting comment spam sentinel...")

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment as is")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	settingsStore := store.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json"))
	commentStore := store.NewCommentStore(filepath.Join(cfg.DataDir, "db.json"))
	tokenStore := store.NewTokenStore(filepath.Join(cfg.DataDir, "token.json"))

	spamClassifier, err := classifier.New(cfg.SpamPatterns...)
	if err != nil {
		slog.Error("Critical error building spam classifier", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	authManager := auth.NewManager(tokenStore, cfg.OAuthRedirectURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.APIRatePerSecond), cfg.APIRateBurst)
	ytClient := youtube.New(cfg.ModerationStatus, limiter, authManager)

	ingest := pipeline.New(settingsStore, commentStore, ytClient, ytClient, ytClient, spamClassifier, collector)
	sched := scheduler.New(ingest, cfg.RunTimeout)

	settings, err := settingsStore.Load()
	if err != nil {
		slog.Error("Critical error loading settings", "error", err)
		os.Exit(1)
	}
	sched.Start(settings.Schedule)
	defer sched.Stop()

	srv := server.New(settingsStore, commentStore, sched, authManager, ingest, cfg.RunTimeout, metrics.Handler(registry))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}
