package commands

import (
	"context"
	"fmt"
	"math"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/royalty"
)

type DepositRoyaltyCommand struct {
	AssetID string
	Payer   string
	Amount  uint64
}

type ClaimRoyaltyCommand struct {
	AssetID string
	Holder  string
}

// DepositRoyalty collects amount from payer and adds it to the asset's pool.
func (uc LedgerUseCase) DepositRoyalty(ctx context.Context, cmd DepositRoyaltyCommand) (entities.Asset, error) {
	assetID := normalizeID(cmd.AssetID)
	payer := normalizeID(cmd.Payer)
	switch {
	case assetID == "":
		return entities.Asset{}, uc.rejected("deposit_royalty", domainerrors.ErrInvalidAssetID)
	case payer == "":
		return entities.Asset{}, uc.rejected("deposit_royalty", domainerrors.ErrNullHolder, "asset_id", assetID)
	case cmd.Amount == 0:
		return entities.Asset{}, uc.rejected("deposit_royalty", domainerrors.ErrZeroAmount, "asset_id", assetID)
	}

	var updated entities.Asset
	err := uc.execute(ctx, "deposit_royalty", func(ctx context.Context, now time.Time) error {
		asset, err := uc.Repo.GetAsset(ctx, assetID)
		if err != nil {
			return err
		}
		if cmd.Amount > math.MaxUint64-asset.DepositedRoyalties {
			return uc.rejected("deposit_royalty", domainerrors.ErrRoyaltyOverflow,
				"asset_id", assetID,
				"amount", cmd.Amount,
			)
		}

		if err := uc.collect(ctx, payer, cmd.Amount, depositReference(assetID)); err != nil {
			return fmt.Errorf("collect royalty deposit: %w", err)
		}
		asset.AccumulatedRoyalties += cmd.Amount
		asset.DepositedRoyalties += cmd.Amount
		asset.UpdatedAt = now
		if err := uc.Repo.SaveAsset(ctx, asset); err != nil {
			return err
		}
		updated = asset
		return uc.appendLedgerEvent(ctx, "ledger.royalty_deposited", "asset_id", assetID, now, map[string]any{
			"asset_id":    assetID,
			"payer":       payer,
			"amount":      cmd.Amount,
			"accumulated": asset.AccumulatedRoyalties,
		})
	})
	if err != nil {
		return entities.Asset{}, err
	}

	application.ResolveLogger(uc.Logger).Info("royalty deposited",
		"event", "ledger_royalty_deposited",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"payer", payer,
		"amount", cmd.Amount,
	)
	return updated, nil
}

// ClaimRoyalty pays the holder's share of the asset's royalties. All ledger
// state is written before the payout, which is the final effect.
func (uc LedgerUseCase) ClaimRoyalty(ctx context.Context, cmd ClaimRoyaltyCommand) (entities.RoyaltyClaim, error) {
	assetID := normalizeID(cmd.AssetID)
	holder := normalizeID(cmd.Holder)
	switch {
	case assetID == "":
		return entities.RoyaltyClaim{}, uc.rejected("claim_royalty", domainerrors.ErrInvalidAssetID)
	case holder == "":
		return entities.RoyaltyClaim{}, uc.rejected("claim_royalty", domainerrors.ErrNullHolder, "asset_id", assetID)
	}

	mode := uc.royaltyMode()
	var claim entities.RoyaltyClaim
	err := uc.execute(ctx, "claim_royalty", func(ctx context.Context, now time.Time) error {
		asset, err := uc.Repo.GetAsset(ctx, assetID)
		if err != nil {
			return err
		}
		position, err := uc.loadPosition(ctx, asset, holder, now)
		if err != nil {
			return err
		}
		switch {
		case position.Amount == 0:
			return uc.rejected("claim_royalty", domainerrors.ErrNoFractions, "asset_id", assetID, "holder", holder)
		case asset.AccumulatedRoyalties == 0:
			return uc.rejected("claim_royalty", domainerrors.ErrNoRoyalties, "asset_id", assetID, "holder", holder)
		}

		uc.settle(&position, asset)
		share := royalty.Share(mode, asset, position)
		switch {
		case share == 0:
			return uc.rejected("claim_royalty", domainerrors.ErrZeroShare, "asset_id", assetID, "holder", holder)
		case share > asset.AccumulatedRoyalties:
			return domainerrors.ErrRoyaltyAccounting
		}

		asset.AccumulatedRoyalties -= share
		asset.UpdatedAt = now
		if mode == royalty.ModeCheckpoint {
			position.RoyaltyOwed -= share
		}
		position.UpdatedAt = now
		if err := uc.Repo.SaveAsset(ctx, asset); err != nil {
			return err
		}
		if err := uc.Repo.SavePosition(ctx, position); err != nil {
			return err
		}

		claim = entities.RoyaltyClaim{
			AssetID:   assetID,
			Holder:    holder,
			Share:     share,
			Remaining: asset.AccumulatedRoyalties,
			ClaimedAt: now,
		}
		if err := uc.appendLedgerEvent(ctx, "ledger.royalty_claimed", "asset_id", assetID, now, map[string]any{
			"asset_id":  assetID,
			"holder":    holder,
			"share":     share,
			"remaining": claim.Remaining,
			"mode":      string(mode),
		}); err != nil {
			return err
		}
		if err := uc.pay(ctx, holder, share, claimReference(assetID, holder)); err != nil {
			return fmt.Errorf("pay royalty share: %w", err)
		}
		return nil
	})
	if err != nil {
		return entities.RoyaltyClaim{}, err
	}

	application.ResolveLogger(uc.Logger).Info("royalty claimed",
		"event", "ledger_royalty_claimed",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"holder", holder,
		"share", claim.Share,
	)
	return claim, nil
}

func depositReference(assetID string) string {
	return "royalty-deposit:" + assetID
}

func claimReference(assetID string, holder string) string {
	return "royalty-claim:" + assetID + ":" + holder
}
