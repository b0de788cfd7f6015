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
	"syndicate/internal/platform/messaging"
)

// Worker process entrypoint: relays both outboxes to NATS, or to the
// in-process bus when no broker URL is configured.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "syndicate worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.Setup("worker", cfg.Debug)
	if err != nil {
		return err
	}
	logger = logger.With("service", cfg.ServiceName)

	components, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap worker: %w", err)
	}

	var worker *bootstrap.WorkerApp
	if cfg.NATSURL != "" {
		publisher, err := messaging.ConnectNATS(cfg.NATSURL, cfg.ServiceName+"-worker", logger)
		if err != nil {
			_ = components.Close()
			return err
		}
		worker = bootstrap.NewWorker(components, publisher).WithCloser(publisher.Close)
	} else {
		worker = bootstrap.NewWorker(components, messaging.NewBus(logger))
	}
	defer func() {
		if err := worker.Close(); err != nil {
			logger.Error("worker close failed",
				"event", "worker_close_failed",
				"module", "cmd/worker",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return worker.Run(ctx)
}
