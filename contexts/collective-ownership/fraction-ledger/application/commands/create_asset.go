package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
)

// CreateAssetCommand is the creation hook invoked once per fractionalized
// asset by the minting facility.
type CreateAssetCommand struct {
	AssetID          string
	InitialHolder    string
	Name             string
	Symbol           string
	URI              string
	TotalFractions   uint64
	RoyaltyBps       uint32
	RageQuitEligible bool
}

// CreateAsset records the asset and hands every fraction to the initial holder.
func (uc LedgerUseCase) CreateAsset(ctx context.Context, cmd CreateAssetCommand) (entities.Asset, error) {
	assetID := normalizeID(cmd.AssetID)
	holder := normalizeID(cmd.InitialHolder)
	switch {
	case assetID == "":
		return entities.Asset{}, uc.rejected("create_asset", domainerrors.ErrInvalidAssetID)
	case holder == "":
		return entities.Asset{}, uc.rejected("create_asset", domainerrors.ErrNullHolder, "asset_id", assetID)
	case cmd.TotalFractions == 0:
		return entities.Asset{}, uc.rejected("create_asset", domainerrors.ErrZeroAmount, "asset_id", assetID)
	case cmd.RoyaltyBps > entities.MaxRoyaltyBps:
		return entities.Asset{}, uc.rejected("create_asset", domainerrors.ErrInvalidRoyaltyRate,
			"asset_id", assetID,
			"royalty_bps", cmd.RoyaltyBps,
		)
	}

	var created entities.Asset
	err := uc.execute(ctx, "create_asset", func(ctx context.Context, now time.Time) error {
		if _, err := uc.Repo.GetAsset(ctx, assetID); err == nil {
			return uc.rejected("create_asset", domainerrors.ErrAssetExists, "asset_id", assetID)
		} else if !errors.Is(err, domainerrors.ErrAssetNotFound) {
			return err
		}

		asset := entities.Asset{
			AssetID:            assetID,
			Name:               strings.TrimSpace(cmd.Name),
			Symbol:             strings.TrimSpace(cmd.Symbol),
			URI:                strings.TrimSpace(cmd.URI),
			RoyaltyBps:         cmd.RoyaltyBps,
			TotalFractions:     cmd.TotalFractions,
			AvailableFractions: cmd.TotalFractions,
			RageQuitEligible:   cmd.RageQuitEligible,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := uc.Repo.InsertAsset(ctx, asset); err != nil {
			return err
		}
		position := entities.NewPosition(assetID, holder, 0, now)
		position.Amount = cmd.TotalFractions
		position.LastActionAt = now
		if err := uc.Repo.SavePosition(ctx, position); err != nil {
			return err
		}

		changes := power.Changes{}
		changes.Credit(holder, cmd.TotalFractions)
		if err := uc.applyPower(ctx, changes, now); err != nil {
			return err
		}
		if err := uc.appendLedgerEvent(ctx, "ledger.asset_created", "asset_id", assetID, now, map[string]any{
			"asset_id":           assetID,
			"initial_holder":     holder,
			"total_fractions":    asset.TotalFractions,
			"royalty_bps":        asset.RoyaltyBps,
			"rage_quit_eligible": asset.RageQuitEligible,
		}); err != nil {
			return err
		}
		created = asset
		return nil
	})
	if err != nil {
		return entities.Asset{}, err
	}

	application.ResolveLogger(uc.Logger).Info("asset fractionalized",
		"event", "ledger_asset_created",
		"module", moduleName,
		"layer", "application",
		"asset_id", created.AssetID,
		"initial_holder", holder,
		"total_fractions", created.TotalFractions,
	)
	return created, nil
}
