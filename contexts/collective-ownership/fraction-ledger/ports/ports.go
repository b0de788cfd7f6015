package ports

import (
	"context"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	"syndicate/internal/shared/events"
	"syndicate/internal/shared/outbox"
)

type AssetRepository interface {
	InsertAsset(ctx context.Context, asset entities.Asset) error
	GetAsset(ctx context.Context, assetID string) (entities.Asset, error)
	SaveAsset(ctx context.Context, asset entities.Asset) error
	ListAssets(ctx context.Context) ([]entities.Asset, error)
}

type PositionRepository interface {
	GetPosition(ctx context.Context, assetID string, holder string) (entities.Position, bool, error)
	SavePosition(ctx context.Context, position entities.Position) error
	// ListPositionsByAsset returns positions ordered by holder.
	ListPositionsByAsset(ctx context.Context, assetID string) ([]entities.Position, error)
	// ListPositionsByHolder returns positions ordered by asset id.
	ListPositionsByHolder(ctx context.Context, holder string) ([]entities.Position, error)
}

type PowerRepository interface {
	GetPower(ctx context.Context, holder string) (entities.HolderPower, bool, error)
	SavePower(ctx context.Context, power entities.HolderPower) error
}

type ExitRepository interface {
	GetExit(ctx context.Context, holder string) (entities.HolderExit, bool, error)
	SaveExit(ctx context.Context, exit entities.HolderExit) error
}

type Repository interface {
	AssetRepository
	PositionRepository
	PowerRepository
	ExitRepository
}

// UnitOfWork runs fn so that every write made through the repository either
// commits together or not at all. Nested calls join the outer unit.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ValueTransfer is the external value channel. Collect receives a royalty
// deposit from payer; Pay sends a claimed share to payee. An error aborts the
// calling command.
type ValueTransfer interface {
	Collect(ctx context.Context, payer string, amount uint64, reference string) error
	Pay(ctx context.Context, payee string, amount uint64, reference string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Metrics observes command outcomes. Nil disables observation.
type Metrics interface {
	Observe(module string, operation string, err error)
}

type EventEnvelope = events.Envelope

type OutboxMessage = outbox.Message

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
