package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"Cadence/internal/app"
	"Cadence/internal/config"
	"Cadence/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if err := application.Close(); err != nil {
		logger.Error("shutdown cleanup failed", "error", err)
	}
	if runErr != nil {
		logger.Error("application stopped", "error", runErr)
		os.Exit(1)
	}
}
