package commands

import (
	"context"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
)

type TransferCommand struct {
	AssetID string
	From    string
	To      string
	Amount  uint64
}

type DelegateCommand struct {
	AssetID string
	From    string
	To      string
	Amount  uint64
}

// MoveResult carries both positions as they stand after a transfer or
// delegation.
type MoveResult struct {
	From entities.Position
	To   entities.Position
}

// Transfer moves fractions between holders. Acted positions are frozen, and a
// position that delegated once can no longer transfer its remainder.
func (uc LedgerUseCase) Transfer(ctx context.Context, cmd TransferCommand) (MoveResult, error) {
	assetID := normalizeID(cmd.AssetID)
	from := normalizeID(cmd.From)
	to := normalizeID(cmd.To)
	switch {
	case assetID == "":
		return MoveResult{}, uc.rejected("transfer", domainerrors.ErrInvalidAssetID)
	case cmd.Amount == 0:
		return MoveResult{}, uc.rejected("transfer", domainerrors.ErrZeroAmount, "asset_id", assetID)
	case from == "" || to == "":
		return MoveResult{}, uc.rejected("transfer", domainerrors.ErrNullHolder, "asset_id", assetID)
	}

	var result MoveResult
	err := uc.execute(ctx, "transfer", func(ctx context.Context, now time.Time) error {
		asset, err := uc.Repo.GetAsset(ctx, assetID)
		if err != nil {
			return err
		}
		source, err := uc.loadPosition(ctx, asset, from, now)
		if err != nil {
			return err
		}
		switch {
		case source.HasActed():
			return uc.rejected("transfer", domainerrors.ErrPositionActed, "asset_id", assetID, "holder", from)
		case source.HasDelegated():
			return uc.rejected("transfer", domainerrors.ErrDelegatedPosition, "asset_id", assetID, "holder", from)
		case source.Amount < cmd.Amount:
			return uc.rejected("transfer", domainerrors.ErrInsufficientBalance,
				"asset_id", assetID,
				"holder", from,
				"balance", source.Amount,
				"amount", cmd.Amount,
			)
		}

		if from == to {
			source.LastActionAt = now
			source.UpdatedAt = now
			if err := uc.Repo.SavePosition(ctx, source); err != nil {
				return err
			}
			result = MoveResult{From: source, To: source}
			return uc.appendMoveEvent(ctx, "ledger.fractions_transferred", assetID, from, to, cmd.Amount, now)
		}

		target, err := uc.loadPosition(ctx, asset, to, now)
		if err != nil {
			return err
		}
		moved, err := uc.move(ctx, asset, source, target, cmd.Amount, false, now)
		if err != nil {
			return err
		}
		result = moved
		return uc.appendMoveEvent(ctx, "ledger.fractions_transferred", assetID, from, to, cmd.Amount, now)
	})
	if err != nil {
		return MoveResult{}, err
	}

	application.ResolveLogger(uc.Logger).Info("fractions transferred",
		"event", "ledger_fractions_transferred",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"from", from,
		"to", to,
		"amount", cmd.Amount,
	)
	return result, nil
}

// Delegate moves fractions to a delegate for voting. A position delegates at
// most once and there is no revoke.
func (uc LedgerUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (MoveResult, error) {
	assetID := normalizeID(cmd.AssetID)
	from := normalizeID(cmd.From)
	to := normalizeID(cmd.To)
	switch {
	case assetID == "":
		return MoveResult{}, uc.rejected("delegate", domainerrors.ErrInvalidAssetID)
	case from == "" || to == "":
		return MoveResult{}, uc.rejected("delegate", domainerrors.ErrNullHolder, "asset_id", assetID)
	case from == to:
		return MoveResult{}, uc.rejected("delegate", domainerrors.ErrSelfDelegation, "asset_id", assetID, "holder", from)
	case cmd.Amount == 0:
		return MoveResult{}, uc.rejected("delegate", domainerrors.ErrZeroAmount, "asset_id", assetID)
	}

	var result MoveResult
	err := uc.execute(ctx, "delegate", func(ctx context.Context, now time.Time) error {
		asset, err := uc.Repo.GetAsset(ctx, assetID)
		if err != nil {
			return err
		}
		source, err := uc.loadPosition(ctx, asset, from, now)
		if err != nil {
			return err
		}
		switch {
		case source.HasActed():
			return uc.rejected("delegate", domainerrors.ErrPositionActed, "asset_id", assetID, "holder", from)
		case source.HasDelegated():
			return uc.rejected("delegate", domainerrors.ErrAlreadyDelegated,
				"asset_id", assetID,
				"holder", from,
				"delegated_to", source.DelegatedTo,
			)
		case source.Amount < cmd.Amount:
			return uc.rejected("delegate", domainerrors.ErrInsufficientBalance,
				"asset_id", assetID,
				"holder", from,
				"balance", source.Amount,
				"amount", cmd.Amount,
			)
		}

		target, err := uc.loadPosition(ctx, asset, to, now)
		if err != nil {
			return err
		}
		source.DelegatedTo = to
		moved, err := uc.move(ctx, asset, source, target, cmd.Amount, true, now)
		if err != nil {
			return err
		}
		result = moved
		return uc.appendMoveEvent(ctx, "ledger.fractions_delegated", assetID, from, to, cmd.Amount, now)
	})
	if err != nil {
		return MoveResult{}, err
	}

	application.ResolveLogger(uc.Logger).Info("fractions delegated",
		"event", "ledger_fractions_delegated",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"from", from,
		"to", to,
		"amount", cmd.Amount,
	)
	return result, nil
}

// move debits source and credits target after settling royalties on both.
// The source is always active here; the target only gains power while active.
func (uc LedgerUseCase) move(
	ctx context.Context,
	asset entities.Asset,
	source entities.Position,
	target entities.Position,
	amount uint64,
	delegation bool,
	now time.Time,
) (MoveResult, error) {
	uc.settle(&source, asset)
	uc.settle(&target, asset)

	source.Amount -= amount
	source.LastActionAt = now
	source.UpdatedAt = now
	target.Amount += amount
	target.UpdatedAt = now
	if delegation {
		target.IsDelegateReceiver = true
	}

	changes := power.Changes{}
	changes.Debit(source.Holder, amount)
	if !target.HasActed() {
		changes.Credit(target.Holder, amount)
	}

	if err := uc.Repo.SavePosition(ctx, source); err != nil {
		return MoveResult{}, err
	}
	if err := uc.Repo.SavePosition(ctx, target); err != nil {
		return MoveResult{}, err
	}
	if err := uc.applyPower(ctx, changes, now); err != nil {
		return MoveResult{}, err
	}
	return MoveResult{From: source, To: target}, nil
}

func (uc LedgerUseCase) appendMoveEvent(
	ctx context.Context,
	eventType string,
	assetID string,
	from string,
	to string,
	amount uint64,
	now time.Time,
) error {
	return uc.appendLedgerEvent(ctx, eventType, "asset_id", assetID, now, map[string]any{
		"asset_id": assetID,
		"from":     from,
		"to":       to,
		"amount":   amount,
	})
}
