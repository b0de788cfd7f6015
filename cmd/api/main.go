package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"syndicate/internal/app/bootstrap"
	"syndicate/internal/platform/config"
	"syndicate/internal/platform/logging"
)

// API process entrypoint: load config, wire both modules, serve HTTP until
// SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "syndicate api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.Setup("api", cfg.Debug)
	if err != nil {
		return err
	}
	logger = logger.With("service", cfg.ServiceName)

	app, err := bootstrap.NewAPI(cfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap api: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("api close failed",
				"event", "api_close_failed",
				"module", "cmd/api",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
