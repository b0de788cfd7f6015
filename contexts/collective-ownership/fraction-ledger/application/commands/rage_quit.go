package commands

import (
	"context"
	"sort"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
)

// RageQuit burns every eligible position the holder owns and records the
// holder's one-time exit. Delegate-receiver balances stay put since they
// belong to other holders' contributions.
func (uc LedgerUseCase) RageQuit(ctx context.Context, holder string) (entities.RageQuitResult, error) {
	holder = normalizeID(holder)
	if holder == "" {
		return entities.RageQuitResult{}, uc.rejected("rage_quit", domainerrors.ErrNullHolder)
	}

	var result entities.RageQuitResult
	err := uc.execute(ctx, "rage_quit", func(ctx context.Context, now time.Time) error {
		if _, exited, err := uc.Repo.GetExit(ctx, holder); err != nil {
			return err
		} else if exited {
			return uc.rejected("rage_quit", domainerrors.ErrAlreadyRageQuit, "holder", holder)
		}

		positions, err := uc.Repo.ListPositionsByHolder(ctx, holder)
		if err != nil {
			return err
		}

		type burn struct {
			asset    entities.Asset
			position entities.Position
		}
		burns := make([]burn, 0, len(positions))
		for _, position := range positions {
			if position.Amount == 0 || position.IsDelegateReceiver || position.Status == entities.PositionStatusExited {
				continue
			}
			asset, err := uc.Repo.GetAsset(ctx, position.AssetID)
			if err != nil {
				return err
			}
			if !asset.RageQuitEligible {
				continue
			}
			if asset.AvailableFractions < position.Amount {
				return domainerrors.ErrInsufficientBalance
			}
			burns = append(burns, burn{asset: asset, position: position})
		}
		if len(burns) == 0 {
			return uc.rejected("rage_quit", domainerrors.ErrNothingToRageQuit, "holder", holder)
		}

		changes := power.Changes{}
		assets := make([]string, 0, len(burns))
		var burned uint64
		for _, item := range burns {
			asset := item.asset
			position := item.position
			uc.settle(&position, asset)
			if position.Status == entities.PositionStatusActive {
				changes.Debit(holder, position.Amount)
			}

			amount := position.Amount
			asset.AvailableFractions -= amount
			asset.UpdatedAt = now
			position.Amount = 0
			position.Status = entities.PositionStatusExited
			position.LastActionAt = now
			position.UpdatedAt = now
			if err := uc.Repo.SaveAsset(ctx, asset); err != nil {
				return err
			}
			if err := uc.Repo.SavePosition(ctx, position); err != nil {
				return err
			}
			assets = append(assets, asset.AssetID)
			burned += amount
		}
		sort.Strings(assets)

		if err := uc.applyPower(ctx, changes, now); err != nil {
			return err
		}
		if err := uc.Repo.SaveExit(ctx, entities.HolderExit{
			Holder:   holder,
			Assets:   assets,
			ExitedAt: now,
		}); err != nil {
			return err
		}

		result = entities.RageQuitResult{
			Holder:   holder,
			Assets:   assets,
			Burned:   burned,
			ExitedAt: now,
		}
		return uc.appendLedgerEvent(ctx, "ledger.rage_quit", "holder", holder, now, map[string]any{
			"holder": holder,
			"assets": assets,
			"burned": burned,
		})
	})
	if err != nil {
		return entities.RageQuitResult{}, err
	}

	application.ResolveLogger(uc.Logger).Info("holder rage quit",
		"event", "ledger_rage_quit",
		"module", moduleName,
		"layer", "application",
		"holder", holder,
		"assets", len(result.Assets),
		"burned", result.Burned,
	)
	return result, nil
}
