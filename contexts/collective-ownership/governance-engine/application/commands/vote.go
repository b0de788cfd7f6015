package commands

import (
	"context"
	"math"
	"strconv"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
)

type CastVoteCommand struct {
	ProposalID uint64
	Support    bool
	AssetID    string
	Voter      string
}

type CastVoteResult struct {
	Receipt  entities.VoteReceipt
	Proposal entities.Proposal
}

// CastVote spends the voter's position in AssetID and adds the resulting
// weight to the proposal tally. The ledger mark and the tally commit together.
func (uc GovernanceUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	assetID := normalizeID(cmd.AssetID)
	voter := normalizeID(cmd.Voter)
	switch {
	case cmd.ProposalID == 0:
		return CastVoteResult{}, uc.rejected("cast_vote", domainerrors.ErrInvalidProposalID)
	case voter == "":
		return CastVoteResult{}, uc.rejected("cast_vote", domainerrors.ErrInvalidIdentity)
	case assetID == "":
		return CastVoteResult{}, uc.rejected("cast_vote", domainerrors.ErrInvalidAssetID)
	}

	var result CastVoteResult
	err := uc.execute(ctx, "cast_vote", func(ctx context.Context, now time.Time) error {
		proposal, err := uc.Repo.GetProposal(ctx, cmd.ProposalID)
		if err != nil {
			return err
		}
		eligible, err := uc.eligible(ctx, assetID)
		if err != nil {
			return err
		}
		if !eligible {
			return uc.rejected("cast_vote", domainerrors.ErrAssetNotEligible,
				"proposal_id", cmd.ProposalID,
				"asset_id", assetID,
			)
		}
		if state := proposal.State(now); state != entities.ProposalStateActive {
			return uc.rejected("cast_vote", domainerrors.ErrProposalNotActive,
				"proposal_id", cmd.ProposalID,
				"state", string(state),
			)
		}
		if _, voted, err := uc.Repo.GetReceipt(ctx, cmd.ProposalID, voter); err != nil {
			return err
		} else if voted {
			return uc.rejected("cast_vote", domainerrors.ErrAlreadyVoted,
				"proposal_id", cmd.ProposalID,
				"voter", voter,
			)
		}

		mark, err := uc.Ledger.MarkActedForVote(ctx, assetID, voter)
		if err != nil {
			return err
		}
		weight := mark.PowerBefore
		if uc.tallyMode() == entities.TallyModeAsset {
			weight = mark.Amount
		}
		if weight == 0 {
			return uc.rejected("cast_vote", domainerrors.ErrZeroWeight, "proposal_id", cmd.ProposalID, "voter", voter)
		}
		if cmd.Support {
			if weight > math.MaxUint64-proposal.ForVotes {
				return domainerrors.ErrTallyOverflow
			}
			proposal.ForVotes += weight
		} else {
			if weight > math.MaxUint64-proposal.AgainstVotes {
				return domainerrors.ErrTallyOverflow
			}
			proposal.AgainstVotes += weight
		}
		proposal.UpdatedAt = now

		receipt := entities.VoteReceipt{
			ProposalID: proposal.ProposalID,
			Voter:      voter,
			AssetID:    assetID,
			Support:    cmd.Support,
			Weight:     weight,
			AssetVotes: mark.Amount,
			CastAt:     now,
		}
		if err := uc.Repo.SaveProposal(ctx, proposal); err != nil {
			return err
		}
		if err := uc.Repo.InsertReceipt(ctx, receipt); err != nil {
			return err
		}
		result = CastVoteResult{Receipt: receipt, Proposal: proposal}
		return uc.appendEvent(ctx, "governance.vote_cast", "proposal_id", proposalKey(proposal.ProposalID), now, map[string]any{
			"proposal_id": proposal.ProposalID,
			"voter":       voter,
			"asset_id":    assetID,
			"support":     cmd.Support,
			"weight":      weight,
			"asset_votes": mark.Amount,
		})
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	application.ResolveLogger(uc.Logger).Info("vote cast",
		"event", "governance_vote_cast",
		"module", moduleName,
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"voter", voter,
		"asset_id", assetID,
		"support", cmd.Support,
		"weight", result.Receipt.Weight,
	)
	return result, nil
}

func proposalKey(proposalID uint64) string {
	return strconv.FormatUint(proposalID, 10)
}
