package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"staybook/internal/bootstrap"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dotenvErr := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logger, _ := obs.NewLogger(obs.LoggerOptions{Env: os.Getenv("APP_ENV")})
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger, logCloser := obs.NewLogger(obs.LoggerOptions{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	if dotenvErr != nil {
		logger.Warn("dotenv load failed", "error", dotenvErr)
	}

	app, err := bootstrap.Build(ctx, cfg, logger, bootstrap.Overrides{})
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	if cfg.FixturesPath != "" {
		if err := app.LoadFixtures(ctx, cfg.FixturesPath, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err, "path", cfg.FixturesPath)
		}
	}

	if app.Worker != nil {
		go func() {
			if err := app.Worker.Run(ctx); err != nil {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.Health, app.Handlers)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if err := app.Close(shutdownCtx); err != nil {
			logger.Error("resource shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage, "lock", cfg.LockBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	<-stopped
	logger.Info("HTTP server stopped")
}
