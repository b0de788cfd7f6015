package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
)

// OutboxRelay forwards governance outbox rows to the publisher, oldest first.
type OutboxRelay struct {
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	TopicPrefix string
	BatchSize   int
	Logger      *slog.Logger
}

// RunOnce relays up to BatchSize rows and reports how many were published.
// A publish failure leaves that row and every later one pending.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "governance_outbox_list_failed",
			"module", "collective-ownership/governance-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	for i, row := range rows {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return i, r.fail(logger, "governance_outbox_decode_failed", row.OutboxID, err)
		}
		if envelope.EventType == "" {
			envelope.EventType = row.EventType
		}
		if err := r.Publisher.Publish(ctx, r.TopicPrefix+envelope.EventType, envelope); err != nil {
			return i, r.fail(logger, "governance_outbox_publish_failed", row.OutboxID, err)
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
			return i, r.fail(logger, "governance_outbox_mark_failed", row.OutboxID, err)
		}
	}

	if len(rows) > 0 {
		logger.Info("governance outbox batch relayed",
			"event", "governance_outbox_relayed",
			"module", "collective-ownership/governance-engine",
			"layer", "worker",
			"published_count", len(rows),
		)
	}
	return len(rows), nil
}

func (r OutboxRelay) fail(logger *slog.Logger, event string, outboxID string, err error) error {
	logger.Error("governance outbox relay failed",
		"event", event,
		"module", "collective-ownership/governance-engine",
		"layer", "worker",
		"outbox_id", outboxID,
		"error", err.Error(),
	)
	return err
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
