package commands

import (
	"context"
	"time"

	application "syndicate/contexts/collective-ownership/fraction-ledger/application"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/power"
)

// MarkActedForVote spends the holder's position in assetID on a vote. The
// position leaves the holder's voting power and is frozen afterwards.
func (uc LedgerUseCase) MarkActedForVote(ctx context.Context, assetID string, holder string) (entities.VoteMark, error) {
	assetID = normalizeID(assetID)
	holder = normalizeID(holder)
	switch {
	case assetID == "":
		return entities.VoteMark{}, uc.rejected("mark_voted", domainerrors.ErrInvalidAssetID)
	case holder == "":
		return entities.VoteMark{}, uc.rejected("mark_voted", domainerrors.ErrNullHolder, "asset_id", assetID)
	}

	var mark entities.VoteMark
	err := uc.execute(ctx, "mark_voted", func(ctx context.Context, now time.Time) error {
		asset, err := uc.Repo.GetAsset(ctx, assetID)
		if err != nil {
			return err
		}
		position, err := uc.loadPosition(ctx, asset, holder, now)
		if err != nil {
			return err
		}
		switch {
		case position.HasActed():
			return uc.rejected("mark_voted", domainerrors.ErrPositionActed, "asset_id", assetID, "holder", holder)
		case position.Amount == 0:
			return uc.rejected("mark_voted", domainerrors.ErrNoVotingBalance, "asset_id", assetID, "holder", holder)
		}

		current, _, err := uc.Repo.GetPower(ctx, holder)
		if err != nil {
			return err
		}
		position.Status = entities.PositionStatusVoted
		position.LastActionAt = now
		position.UpdatedAt = now
		if err := uc.Repo.SavePosition(ctx, position); err != nil {
			return err
		}
		changes := power.Changes{}
		changes.Debit(holder, position.Amount)
		if err := uc.applyPower(ctx, changes, now); err != nil {
			return err
		}

		mark = entities.VoteMark{
			AssetID:     assetID,
			Holder:      holder,
			Amount:      position.Amount,
			PowerBefore: current.Power,
			PowerAfter:  current.Power - position.Amount,
			MarkedAt:    now,
		}
		return uc.appendLedgerEvent(ctx, "ledger.position_voted", "asset_id", assetID, now, map[string]any{
			"asset_id":     assetID,
			"holder":       holder,
			"amount":       mark.Amount,
			"power_before": mark.PowerBefore,
			"power_after":  mark.PowerAfter,
		})
	})
	if err != nil {
		return entities.VoteMark{}, err
	}

	application.ResolveLogger(uc.Logger).Info("position spent on vote",
		"event", "ledger_position_voted",
		"module", moduleName,
		"layer", "application",
		"asset_id", assetID,
		"holder", holder,
		"amount", mark.Amount,
	)
	return mark, nil
}
