package commands

import (
	"context"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
)

type SetAssetEligibilityCommand struct {
	AssetID  string
	Eligible bool
	Caller   string
}

// SetAssetEligibility toggles whether an asset can carry proposals and votes.
// Only administrators may call it.
func (uc GovernanceUseCase) SetAssetEligibility(
	ctx context.Context,
	cmd SetAssetEligibilityCommand,
) (entities.AssetEligibility, error) {
	assetID := normalizeID(cmd.AssetID)
	caller := normalizeID(cmd.Caller)
	switch {
	case caller == "":
		return entities.AssetEligibility{}, uc.rejected("set_eligibility", domainerrors.ErrInvalidIdentity)
	case assetID == "":
		return entities.AssetEligibility{}, uc.rejected("set_eligibility", domainerrors.ErrInvalidAssetID)
	case !uc.Settings.IsAdmin(caller):
		return entities.AssetEligibility{}, uc.rejected("set_eligibility", domainerrors.ErrNotAdmin,
			"asset_id", assetID,
			"caller", caller,
		)
	}

	var saved entities.AssetEligibility
	err := uc.execute(ctx, "set_eligibility", func(ctx context.Context, now time.Time) error {
		exists, err := uc.Ledger.AssetExists(ctx, assetID)
		if err != nil {
			return err
		}
		if !exists {
			return uc.rejected("set_eligibility", domainerrors.ErrAssetNotFound, "asset_id", assetID)
		}
		saved = entities.AssetEligibility{
			AssetID:   assetID,
			Eligible:  cmd.Eligible,
			UpdatedBy: caller,
			UpdatedAt: now,
		}
		if err := uc.Repo.SaveEligibility(ctx, saved); err != nil {
			return err
		}
		return uc.appendEvent(ctx, "governance.asset_eligibility_set", "asset_id", assetID, now, map[string]any{
			"asset_id":   assetID,
			"eligible":   cmd.Eligible,
			"updated_by": caller,
		})
	})
	if err != nil {
		return entities.AssetEligibility{}, err
	}

	application.ResolveLogger(uc.Logger).Info("asset governance eligibility set",
		"event", "governance_asset_eligibility_set",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"eligible", cmd.Eligible,
		"caller", caller,
	)
	return saved, nil
}
