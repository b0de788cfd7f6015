package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	fractionledger "syndicate/contexts/collective-ownership/fraction-ledger"
	ledgermemory "syndicate/contexts/collective-ownership/fraction-ledger/adapters/memory"
	ledgerpostgres "syndicate/contexts/collective-ownership/fraction-ledger/adapters/postgres"
	ledgerworkers "syndicate/contexts/collective-ownership/fraction-ledger/application/workers"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/royalty"
	ledgerports "syndicate/contexts/collective-ownership/fraction-ledger/ports"
	governanceengine "syndicate/contexts/collective-ownership/governance-engine"
	governancememory "syndicate/contexts/collective-ownership/governance-engine/adapters/memory"
	governancepostgres "syndicate/contexts/collective-ownership/governance-engine/adapters/postgres"
	governanceworkers "syndicate/contexts/collective-ownership/governance-engine/application/workers"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	governanceports "syndicate/contexts/collective-ownership/governance-engine/ports"
	"syndicate/internal/platform/config"
	"syndicate/internal/platform/db"
	"syndicate/internal/platform/httpserver"
	"syndicate/internal/platform/metrics"
	"syndicate/internal/shared/events"
	"syndicate/internal/shared/sequencer"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// Components is the wired object graph shared by the api, worker and CLI.
type Components struct {
	Config     config.Config
	Logger     *slog.Logger
	Ledger     fractionledger.Module
	Governance governanceengine.Module
	Metrics    *metrics.Recorder

	LedgerOutbox     ledgerports.OutboxRepository
	GovernanceOutbox governanceports.OutboxRepository

	database *db.Database
}

type APIApp struct {
	*Components
	server *httpserver.Server
}

type WorkerApp struct {
	*Components
	ledgerRelay     ledgerworkers.OutboxRelay
	governanceRelay governanceworkers.OutboxRelay
	closePublisher  func() error
	pollInterval    time.Duration
}

type publisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

// Build wires both modules onto the configured storage driver.
func Build(cfg config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	royaltyMode, ok := royalty.ParseMode(cfg.RoyaltyMode)
	if !ok {
		return nil, fmt.Errorf("unknown royalty mode %q", cfg.RoyaltyMode)
	}
	tallyMode, ok := entities.ParseTallyMode(cfg.TallyMode)
	if !ok {
		return nil, fmt.Errorf("unknown tally mode %q", cfg.TallyMode)
	}
	settings := entities.Settings{
		VotingDelay:  cfg.VotingDelay,
		VotingPeriod: cfg.VotingPeriod,
		Quorum:       cfg.Quorum,
		TallyMode:    tallyMode,
		Admins:       cfg.Admins,
	}

	c := &Components{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRecorder(),
	}
	var observer interface {
		Observe(module string, operation string, err error)
	}
	if cfg.MetricsEnabled {
		observer = c.Metrics
	}
	seq := sequencer.New()

	switch cfg.StorageDriver {
	case config.DriverMemory:
		ledgerStore := ledgermemory.NewStore()
		c.Ledger = fractionledger.NewModule(fractionledger.Dependencies{
			Repo:        ledgerStore,
			Tx:          ledgerStore,
			Value:       ledgerStore,
			Outbox:      ledgerStore,
			Clock:       ledgerStore,
			IDGen:       ledgerStore,
			Sequencer:   seq,
			RoyaltyMode: royaltyMode,
			Metrics:     observer,
			Logger:      logger,
		})
		c.Ledger.Store = ledgerStore

		governanceStore := governancememory.NewStore()
		c.Governance = governanceengine.NewModule(governanceengine.Dependencies{
			Repo:      governanceStore,
			Tx:        chainedUnitOfWork{governanceStore, ledgerStore},
			Ledger:    ledgerBridge{ledger: c.Ledger.Ledger, queries: c.Ledger.Queries},
			Outbox:    governanceStore,
			Clock:     ledgerStore,
			IDGen:     governanceStore,
			Sequencer: seq,
			Settings:  settings,
			Metrics:   observer,
			Logger:    logger,
		})
		c.Governance.Store = governanceStore
		c.LedgerOutbox = ledgerStore
		c.GovernanceOutbox = governanceStore

	case config.DriverPostgres, config.DriverSQLite:
		database, err := openDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		c.database = database

		ledgerRepo := ledgerpostgres.NewRepository(database.DB, logger)
		governanceRepo := governancepostgres.NewRepository(database.DB, logger)
		if cfg.StorageDriver == config.DriverSQLite && cfg.AutoMigrate {
			ctx := context.Background()
			if err := ledgerRepo.AutoMigrate(ctx); err != nil {
				_ = database.Close()
				return nil, err
			}
			if err := governanceRepo.AutoMigrate(ctx); err != nil {
				_ = database.Close()
				return nil, err
			}
		}

		c.Ledger = fractionledger.NewModule(fractionledger.Dependencies{
			Repo:        ledgerRepo,
			Tx:          ledgerRepo,
			Value:       ledgerRepo,
			Outbox:      ledgerRepo,
			Clock:       ledgerpostgres.SystemClock{},
			IDGen:       ledgerpostgres.UUIDGenerator{},
			Sequencer:   seq,
			RoyaltyMode: royaltyMode,
			Metrics:     observer,
			Logger:      logger,
		})
		c.Governance = governanceengine.NewModule(governanceengine.Dependencies{
			Repo:      governanceRepo,
			Tx:        governanceRepo,
			Ledger:    ledgerBridge{ledger: c.Ledger.Ledger, queries: c.Ledger.Queries},
			Outbox:    governanceRepo,
			Clock:     governancepostgres.SystemClock{},
			IDGen:     governancepostgres.UUIDGenerator{},
			Sequencer: seq,
			Settings:  settings,
			Metrics:   observer,
			Logger:    logger,
		})
		c.LedgerOutbox = ledgerRepo
		c.GovernanceOutbox = governanceRepo

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	logger.Info("components wired",
		"event", "bootstrap_components_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"storage_driver", cfg.StorageDriver,
		"royalty_mode", string(royaltyMode),
		"tally_mode", string(tallyMode),
	)
	return c, nil
}

func openDatabase(cfg config.Config, logger *slog.Logger) (*db.Database, error) {
	if cfg.StorageDriver == config.DriverSQLite {
		return db.ConnectSQLite(cfg.SQLitePath)
	}
	database, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if _, err := db.Migrate(database, logger); err != nil {
			_ = database.Close()
			return nil, err
		}
	}
	return database, nil
}

// Database exposes the SQL handle, or nil for the memory driver.
func (c *Components) Database() *db.Database {
	return c.database
}

func (c *Components) Close() error {
	if c.database != nil {
		return c.database.Close()
	}
	return nil
}

func NewAPI(cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	components, err := Build(cfg, logger)
	if err != nil {
		return nil, err
	}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = components.Metrics.Handler()
	}
	server := httpserver.New(components.Ledger, components.Governance, metricsHandler, components.Logger, cfg.Addr())
	return &APIApp{Components: components, server: server}, nil
}

// NewWorker relays both outboxes to pub on every poll.
func NewWorker(components *Components, pub publisher) *WorkerApp {
	cfg := components.Config
	return &WorkerApp{
		Components: components,
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:      components.LedgerOutbox,
			Publisher:   pub,
			Clock:       ledgerpostgres.SystemClock{},
			TopicPrefix: cfg.TopicPrefix,
			BatchSize:   cfg.OutboxBatchSize,
			Logger:      components.Logger,
		},
		governanceRelay: governanceworkers.OutboxRelay{
			Outbox:      components.GovernanceOutbox,
			Publisher:   pub,
			Clock:       governancepostgres.SystemClock{},
			TopicPrefix: cfg.TopicPrefix,
			BatchSize:   cfg.OutboxBatchSize,
			Logger:      components.Logger,
		},
		closePublisher: func() error { return nil },
		pollInterval:   cfg.PollInterval,
	}
}

// WithCloser registers fn to run when the worker closes, typically the
// broker connection's drain.
func (w *WorkerApp) WithCloser(fn func() error) *WorkerApp {
	w.closePublisher = fn
	return w
}

// Run serves HTTP until ctx is canceled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	a.Logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (a *APIApp) Server() *httpserver.Server {
	return a.server
}

// RunOnce relays one batch from each outbox. A relay failure does not stop
// the other relay.
func (w *WorkerApp) RunOnce(ctx context.Context) error {
	ledgerPublished, ledgerErr := w.ledgerRelay.RunOnce(ctx)
	w.Metrics.ObserveRelay("collective-ownership/fraction-ledger", ledgerPublished, ledgerErr)
	governancePublished, governanceErr := w.governanceRelay.RunOnce(ctx)
	w.Metrics.ObserveRelay("collective-ownership/governance-engine", governancePublished, governanceErr)
	return errors.Join(ledgerErr, governanceErr)
}

// Run relays until ctx is canceled. Relay errors are logged and retried on
// the next tick; the rows stay pending.
func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.Logger.Warn("outbox relay pass failed",
				"event", "bootstrap_worker_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	return errors.Join(w.closePublisher(), w.Components.Close())
}
