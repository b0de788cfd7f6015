package commands

import (
	"context"
	"strings"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
)

type ProposeCommand struct {
	AssetID     string
	Proposer    string
	Description string
}

// Propose opens a proposal on an eligible asset. The proposer needs non-zero
// voting power; the voting window opens after the configured delay.
func (uc GovernanceUseCase) Propose(ctx context.Context, cmd ProposeCommand) (entities.Proposal, error) {
	assetID := normalizeID(cmd.AssetID)
	proposer := normalizeID(cmd.Proposer)
	switch {
	case proposer == "":
		return entities.Proposal{}, uc.rejected("propose", domainerrors.ErrInvalidIdentity)
	case assetID == "":
		return entities.Proposal{}, uc.rejected("propose", domainerrors.ErrInvalidAssetID)
	}

	var created entities.Proposal
	err := uc.execute(ctx, "propose", func(ctx context.Context, now time.Time) error {
		eligible, err := uc.eligible(ctx, assetID)
		if err != nil {
			return err
		}
		if !eligible {
			return uc.rejected("propose", domainerrors.ErrAssetNotEligible, "asset_id", assetID)
		}
		power, err := uc.Ledger.VotingPower(ctx, proposer)
		if err != nil {
			return err
		}
		if power == 0 {
			return uc.rejected("propose", domainerrors.ErrNoVotingPower, "asset_id", assetID, "proposer", proposer)
		}

		startAt := now.Add(uc.Settings.VotingDelay)
		proposal, err := uc.Repo.CreateProposal(ctx, entities.Proposal{
			AssetID:     assetID,
			Proposer:    proposer,
			Description: strings.TrimSpace(cmd.Description),
			StartAt:     startAt,
			EndAt:       startAt.Add(uc.Settings.VotingPeriod),
			Quorum:      uc.Settings.Quorum,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		created = proposal
		return uc.appendEvent(ctx, "governance.proposal_created", "proposal_id", proposalKey(proposal.ProposalID), now, map[string]any{
			"proposal_id": proposal.ProposalID,
			"asset_id":    assetID,
			"proposer":    proposer,
			"start_at":    proposal.StartAt.Format(time.RFC3339),
			"end_at":      proposal.EndAt.Format(time.RFC3339),
			"quorum":      proposal.Quorum,
		})
	})
	if err != nil {
		return entities.Proposal{}, err
	}

	application.ResolveLogger(uc.Logger).Info("proposal created",
		"event", "governance_proposal_created",
		"module", moduleName,
		"layer", "application",
		"proposal_id", created.ProposalID,
		"asset_id", assetID,
		"proposer", proposer,
	)
	return created, nil
}
