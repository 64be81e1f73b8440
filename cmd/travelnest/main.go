package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"travelnest/internal/infra/config"
	ginserver "travelnest/internal/infra/http/gin"
	"travelnest/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod", "error").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	if cfg.AdminEmail != "" {
		if _, err := app.auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			logger.Error("admin seed failed", "error", err, "email", cfg.AdminEmail)
		}
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.readiness}, app.handlers)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, bg := range app.background {
		bg := bg
		group.Go(func() error {
			if err := bg.run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "worker", bg.name, "error", err)
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		return nil
	})

	err = group.Wait()
	app.close(logger)
	if err != nil {
		logger.Error("travelnest stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}
