package ports

import (
	"context"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	"syndicate/internal/shared/events"
	"syndicate/internal/shared/outbox"
)

type ProposalRepository interface {
	// CreateProposal assigns the next proposal id, starting at 1.
	CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.Proposal, error)
	GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	// ListProposals returns proposals ordered by id; an empty assetID lists all.
	ListProposals(ctx context.Context, assetID string) ([]entities.Proposal, error)
}

type ReceiptRepository interface {
	GetReceipt(ctx context.Context, proposalID uint64, voter string) (entities.VoteReceipt, bool, error)
	InsertReceipt(ctx context.Context, receipt entities.VoteReceipt) error
	ListReceipts(ctx context.Context, proposalID uint64) ([]entities.VoteReceipt, error)
}

type EligibilityRepository interface {
	GetEligibility(ctx context.Context, assetID string) (entities.AssetEligibility, bool, error)
	SaveEligibility(ctx context.Context, eligibility entities.AssetEligibility) error
}

type Repository interface {
	ProposalRepository
	ReceiptRepository
	EligibilityRepository
}

// UnitOfWork runs fn so that governance writes, and any ledger writes made on
// the same context, commit together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// VoteMark is what the ledger reports when it spends a position on a vote.
type VoteMark struct {
	AssetID     string
	Holder      string
	Amount      uint64
	PowerBefore uint64
	PowerAfter  uint64
}

// Ledger is the fraction ledger as seen by governance.
type Ledger interface {
	AssetExists(ctx context.Context, assetID string) (bool, error)
	VotingPower(ctx context.Context, holder string) (uint64, error)
	MarkActedForVote(ctx context.Context, assetID string, holder string) (VoteMark, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

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
