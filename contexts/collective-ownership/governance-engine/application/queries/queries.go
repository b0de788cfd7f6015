package queries

import (
	"context"
	"strings"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/governance-engine/domain/errors"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
)

// ProposalView pairs a stored proposal with the state derived at read time.
type ProposalView struct {
	Proposal entities.Proposal
	State    entities.ProposalState
}

type ProposalQueries struct {
	Repo  ports.Repository
	Clock ports.Clock
}

func (q ProposalQueries) GetProposal(ctx context.Context, proposalID uint64) (ProposalView, error) {
	if proposalID == 0 {
		return ProposalView{}, domainerrors.ErrInvalidProposalID
	}
	proposal, err := q.Repo.GetProposal(ctx, proposalID)
	if err != nil {
		return ProposalView{}, err
	}
	return ProposalView{Proposal: proposal, State: proposal.State(q.now())}, nil
}

func (q ProposalQueries) ListProposals(ctx context.Context, assetID string) ([]ProposalView, error) {
	proposals, err := q.Repo.ListProposals(ctx, strings.TrimSpace(assetID))
	if err != nil {
		return nil, err
	}
	now := q.now()
	items := make([]ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, ProposalView{Proposal: proposal, State: proposal.State(now)})
	}
	return items, nil
}

func (q ProposalQueries) HasVoted(ctx context.Context, proposalID uint64, holder string) (bool, error) {
	_, voted, err := q.GetReceipt(ctx, proposalID, holder)
	return voted, err
}

func (q ProposalQueries) GetReceipt(ctx context.Context, proposalID uint64, voter string) (entities.VoteReceipt, bool, error) {
	if proposalID == 0 {
		return entities.VoteReceipt{}, false, domainerrors.ErrInvalidProposalID
	}
	if _, err := q.Repo.GetProposal(ctx, proposalID); err != nil {
		return entities.VoteReceipt{}, false, err
	}
	return q.Repo.GetReceipt(ctx, proposalID, strings.TrimSpace(voter))
}

func (q ProposalQueries) ListReceipts(ctx context.Context, proposalID uint64) ([]entities.VoteReceipt, error) {
	if proposalID == 0 {
		return nil, domainerrors.ErrInvalidProposalID
	}
	if _, err := q.Repo.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return q.Repo.ListReceipts(ctx, proposalID)
}

func (q ProposalQueries) IsAssetEligible(ctx context.Context, assetID string) (bool, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return false, domainerrors.ErrInvalidAssetID
	}
	eligibility, found, err := q.Repo.GetEligibility(ctx, assetID)
	if err != nil {
		return false, err
	}
	return found && eligibility.Eligible, nil
}

func (q ProposalQueries) now() time.Time {
	if q.Clock == nil {
		return time.Now().UTC()
	}
	return q.Clock.Now().UTC()
}
