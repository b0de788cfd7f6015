package commands

import (
	"context"
	"time"

	application "syndicate/contexts/collective-ownership/governance-engine/application"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
)

type ExecuteCommand struct {
	ProposalID uint64
	Caller     string
}

type CancelCommand struct {
	ProposalID uint64
	Caller     string
}

// Execute marks a succeeded proposal executed. Payload execution is left to
// whoever consumes governance.proposal_executed.
func (uc GovernanceUseCase) Execute(ctx context.Context, cmd ExecuteCommand) (entities.Proposal, error) {
	if cmd.ProposalID == 0 {
		return entities.Proposal{}, uc.rejected("execute", domainerrors.ErrInvalidProposalID)
	}
	caller := normalizeID(cmd.Caller)

	var executed entities.Proposal
	err := uc.execute(ctx, "execute", func(ctx context.Context, now time.Time) error {
		proposal, err := uc.Repo.GetProposal(ctx, cmd.ProposalID)
		if err != nil {
			return err
		}
		if state := proposal.State(now); state != entities.ProposalStateSucceeded {
			return uc.rejected("execute", domainerrors.ErrProposalNotSucceeded,
				"proposal_id", cmd.ProposalID,
				"state", string(state),
			)
		}
		proposal.Executed = true
		proposal.UpdatedAt = now
		if err := uc.Repo.SaveProposal(ctx, proposal); err != nil {
			return err
		}
		executed = proposal
		return uc.appendEvent(ctx, "governance.proposal_executed", "proposal_id", proposalKey(proposal.ProposalID), now, map[string]any{
			"proposal_id":   proposal.ProposalID,
			"asset_id":      proposal.AssetID,
			"executed_by":   caller,
			"for_votes":     proposal.ForVotes,
			"against_votes": proposal.AgainstVotes,
		})
	})
	if err != nil {
		return entities.Proposal{}, err
	}

	application.ResolveLogger(uc.Logger).Info("proposal executed",
		"event", "governance_proposal_executed",
		"module", moduleName,
		"layer", "application",
		"proposal_id", executed.ProposalID,
		"caller", caller,
	)
	return executed, nil
}

// Cancel stops a pending or active proposal. The proposer and administrators
// may cancel.
func (uc GovernanceUseCase) Cancel(ctx context.Context, cmd CancelCommand) (entities.Proposal, error) {
	caller := normalizeID(cmd.Caller)
	switch {
	case cmd.ProposalID == 0:
		return entities.Proposal{}, uc.rejected("cancel", domainerrors.ErrInvalidProposalID)
	case caller == "":
		return entities.Proposal{}, uc.rejected("cancel", domainerrors.ErrInvalidIdentity)
	}

	var canceled entities.Proposal
	err := uc.execute(ctx, "cancel", func(ctx context.Context, now time.Time) error {
		proposal, err := uc.Repo.GetProposal(ctx, cmd.ProposalID)
		if err != nil {
			return err
		}
		state := proposal.State(now)
		if state != entities.ProposalStatePending && state != entities.ProposalStateActive {
			return uc.rejected("cancel", domainerrors.ErrNotCancelable,
				"proposal_id", cmd.ProposalID,
				"state", string(state),
			)
		}
		if caller != proposal.Proposer && !uc.Settings.IsAdmin(caller) {
			return uc.rejected("cancel", domainerrors.ErrNotProposerOrAdmin,
				"proposal_id", cmd.ProposalID,
				"caller", caller,
			)
		}
		proposal.Canceled = true
		proposal.UpdatedAt = now
		if err := uc.Repo.SaveProposal(ctx, proposal); err != nil {
			return err
		}
		canceled = proposal
		return uc.appendEvent(ctx, "governance.proposal_canceled", "proposal_id", proposalKey(proposal.ProposalID), now, map[string]any{
			"proposal_id": proposal.ProposalID,
			"asset_id":    proposal.AssetID,
			"canceled_by": caller,
			"state":       string(state),
		})
	})
	if err != nil {
		return entities.Proposal{}, err
	}

	application.ResolveLogger(uc.Logger).Info("proposal canceled",
		"event", "governance_proposal_canceled",
		"module", moduleName,
		"layer", "application",
		"proposal_id", canceled.ProposalID,
		"caller", caller,
	)
	return canceled, nil
}
