package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/royalty"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"
	"syndicate/internal/shared/fault"
	"syndicate/internal/shared/sequencer"
)

const moduleName = "collective-ownership/fraction-ledger"

type payoutKey struct{}

// LedgerUseCase orchestrates every balance-affecting ledger command. Each
// command runs inside the shared sequencer and one unit of work, checks all
// preconditions before its first write, and leaves no partial state on error.
type LedgerUseCase struct {
	Repo        ports.Repository
	Tx          ports.UnitOfWork
	Value       ports.ValueTransfer
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Sequencer   *sequencer.Sequencer
	RoyaltyMode royalty.Mode
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

func (uc LedgerUseCase) execute(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context, now time.Time) error,
) error {
	if ctx.Value(payoutKey{}) != nil {
		uc.observe(operation, domainerrors.ErrReentrantCall)
		return domainerrors.ErrReentrantCall
	}
	err := uc.Sequencer.Do(ctx, func(ctx context.Context) error {
		if uc.Tx == nil {
			return fn(ctx, uc.now())
		}
		return uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
			return fn(ctx, uc.now())
		})
	})
	uc.observe(operation, err)
	return err
}

func (uc LedgerUseCase) observe(operation string, err error) {
	if uc.Metrics != nil {
		uc.Metrics.Observe(moduleName, operation, err)
	}
	if err == nil || fault.KindOf(err) != fault.KindInternal {
		return
	}
	application.ResolveLogger(uc.Logger).Error("ledger command failed",
		"event", "ledger_command_failed",
		"module", moduleName,
		"layer", "application",
		"operation", operation,
		"error", err.Error(),
	)
}

func (uc LedgerUseCase) rejected(operation string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+10)
	fields = append(fields,
		"event", "ledger_"+operation+"_rejected",
		"module", moduleName,
		"layer", "application",
		"kind", string(fault.KindOf(err)),
		"reason", err.Error(),
	)
	fields = append(fields, attrs...)
	application.ResolveLogger(uc.Logger).Warn("ledger command rejected", fields...)
	return err
}

func (uc LedgerUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc LedgerUseCase) royaltyMode() royalty.Mode {
	if uc.RoyaltyMode == "" {
		return royalty.ModeCheckpoint
	}
	return uc.RoyaltyMode
}

// loadPosition returns the stored position or an unsaved empty one.
func (uc LedgerUseCase) loadPosition(
	ctx context.Context,
	asset entities.Asset,
	holder string,
	now time.Time,
) (entities.Position, error) {
	position, found, err := uc.Repo.GetPosition(ctx, asset.AssetID, holder)
	if err != nil {
		return entities.Position{}, err
	}
	if !found {
		return entities.NewPosition(asset.AssetID, holder, asset.DepositedRoyalties, now), nil
	}
	return position, nil
}

func (uc LedgerUseCase) settle(position *entities.Position, asset entities.Asset) {
	if uc.royaltyMode() == royalty.ModeCheckpoint {
		royalty.Settle(position, asset)
	}
}

func (uc LedgerUseCase) applyPower(ctx context.Context, changes power.Changes, now time.Time) error {
	for _, holder := range changes.Holders() {
		current, _, err := uc.Repo.GetPower(ctx, holder)
		if err != nil {
			return err
		}
		next, err := power.Apply(current.Power, changes[holder])
		if err != nil {
			return err
		}
		if err := uc.Repo.SavePower(ctx, entities.HolderPower{
			Holder:    holder,
			Power:     next,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (uc LedgerUseCase) pay(ctx context.Context, payee string, amount uint64, reference string) error {
	if uc.Value == nil {
		return errors.New("value transfer facility is not configured")
	}
	return uc.Value.Pay(context.WithValue(ctx, payoutKey{}, true), payee, amount, reference)
}

func (uc LedgerUseCase) collect(ctx context.Context, payer string, amount uint64, reference string) error {
	if uc.Value == nil {
		return errors.New("value transfer facility is not configured")
	}
	return uc.Value.Collect(context.WithValue(ctx, payoutKey{}, true), payer, amount, reference)
}

func normalizeID(value string) string {
	return strings.TrimSpace(value)
}
