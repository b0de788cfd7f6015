package commands

import (
	"context"
	"time"

	"syndicate/internal/shared/events"
)

func (uc LedgerUseCase) appendLedgerEvent(
	ctx context.Context,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data["occurred_at"] = occurredAt.UTC().Format(time.RFC3339)
	envelope, err := events.New(eventID, eventType, "fraction-ledger", partitionKeyPath, partitionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
