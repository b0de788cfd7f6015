package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
	"syndicate/internal/shared/events"
	"syndicate/internal/shared/fault"
	"syndicate/internal/shared/sequencer"
)

const moduleName = "collective-ownership/governance-engine"

// GovernanceUseCase runs governance commands. It shares the sequencer with the
// ledger so a vote and the ledger mark it causes form one operation.
type GovernanceUseCase struct {
	Repo      ports.Repository
	Tx        ports.UnitOfWork
	Ledger    ports.Ledger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Sequencer *sequencer.Sequencer
	Settings  entities.Settings
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

func (uc GovernanceUseCase) execute(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context, now time.Time) error,
) error {
	err := uc.Sequencer.Do(ctx, func(ctx context.Context) error {
		if uc.Tx == nil {
			return fn(ctx, uc.now())
		}
		return uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
			return fn(ctx, uc.now())
		})
	})
	if uc.Metrics != nil {
		uc.Metrics.Observe(moduleName, operation, err)
	}
	if err != nil && fault.KindOf(err) == fault.KindInternal {
		application.ResolveLogger(uc.Logger).Error("governance command failed",
			"event", "governance_command_failed",
			"module", moduleName,
			"layer", "application",
			"operation", operation,
			"error", err.Error(),
		)
	}
	return err
}

func (uc GovernanceUseCase) rejected(operation string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+10)
	fields = append(fields,
		"event", "governance_"+operation+"_rejected",
		"module", moduleName,
		"layer", "application",
		"kind", string(fault.KindOf(err)),
		"reason", err.Error(),
	)
	fields = append(fields, attrs...)
	application.ResolveLogger(uc.Logger).Warn("governance command rejected", fields...)
	return err
}

func (uc GovernanceUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc GovernanceUseCase) tallyMode() entities.TallyMode {
	if uc.Settings.TallyMode == "" {
		return entities.TallyModeAggregate
	}
	return uc.Settings.TallyMode
}

func (uc GovernanceUseCase) eligible(ctx context.Context, assetID string) (bool, error) {
	eligibility, found, err := uc.Repo.GetEligibility(ctx, assetID)
	if err != nil {
		return false, err
	}
	return found && eligibility.Eligible, nil
}

func (uc GovernanceUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := events.New(eventID, eventType, "governance-engine", partitionKeyPath, partitionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func normalizeID(value string) string {
	return strings.TrimSpace(value)
}
