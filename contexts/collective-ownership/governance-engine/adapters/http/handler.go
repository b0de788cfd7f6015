package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"syndicate/contexts/collective-ownership/governance-engine/application/commands"
	"syndicate/contexts/collective-ownership/governance-engine/application/queries"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	httptransport "syndicate/contexts/collective-ownership/governance-engine/transport/http"
)

type Handler struct {
	Governance commands.GovernanceUseCase
	Queries    queries.ProposalQueries
	Logger     *slog.Logger
}

func (h Handler) SetEligibilityHandler(
	ctx context.Context,
	caller string,
	assetID string,
	req httptransport.SetEligibilityRequest,
) (httptransport.EligibilityResponse, error) {
	saved, err := h.Governance.SetAssetEligibility(ctx, commands.SetAssetEligibilityCommand{
		AssetID:  assetID,
		Eligible: req.Eligible,
		Caller:   caller,
	})
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return httptransport.EligibilityResponse{
		AssetID:   saved.AssetID,
		Eligible:  saved.Eligible,
		UpdatedBy: saved.UpdatedBy,
		UpdatedAt: formatTime(saved.UpdatedAt),
	}, nil
}

func (h Handler) GetEligibilityHandler(ctx context.Context, assetID string) (httptransport.EligibilityResponse, error) {
	eligible, err := h.Queries.IsAssetEligible(ctx, assetID)
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return httptransport.EligibilityResponse{
		AssetID:  strings.TrimSpace(assetID),
		Eligible: eligible,
	}, nil
}

// ProposeHandler godoc
// @Summary Open a proposal
// @Tags governance-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.ProposeRequest true "Asset and description"
// @Success 201 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals [post]
func (h Handler) ProposeHandler(
	ctx context.Context,
	proposer string,
	req httptransport.ProposeRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governance.Propose(ctx, commands.ProposeCommand{
		AssetID:     req.AssetID,
		Proposer:    proposer,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return h.GetProposalHandler(ctx, proposal.ProposalID)
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(view.Proposal, view.State), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context, assetID string) (httptransport.ProposalListResponse, error) {
	views, err := h.Queries.ListProposals(ctx, assetID)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapProposal(view.Proposal, view.State))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

// CastVoteHandler godoc
// @Summary Vote on a proposal
// @Description Spends the caller's position in the given asset. Each holder votes once per proposal.
// @Tags governance-engine
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param proposal_id path int true "Proposal id"
// @Param request body httptransport.CastVoteRequest true "Asset and support"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/governance/proposals/{proposal_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	voter string,
	proposalID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Governance.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		Support:    req.Support,
		AssetID:    req.AssetID,
		Voter:      voter,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	state := result.Proposal.State(h.Queries.Clock.Now())
	return httptransport.CastVoteResponse{
		Receipt:  mapReceipt(result.Receipt),
		Proposal: mapProposal(result.Proposal, state),
	}, nil
}

func (h Handler) ListReceiptsHandler(ctx context.Context, proposalID uint64) (httptransport.ReceiptListResponse, error) {
	receipts, err := h.Queries.ListReceipts(ctx, proposalID)
	if err != nil {
		return httptransport.ReceiptListResponse{}, err
	}
	items := make([]httptransport.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		items = append(items, mapReceipt(receipt))
	}
	return httptransport.ReceiptListResponse{Items: items}, nil
}

func (h Handler) HasVotedHandler(ctx context.Context, proposalID uint64, voter string) (httptransport.HasVotedResponse, error) {
	voted, err := h.Queries.HasVoted(ctx, proposalID, voter)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{
		ProposalID: proposalID,
		Voter:      strings.TrimSpace(voter),
		HasVoted:   voted,
	}, nil
}

func (h Handler) ExecuteHandler(ctx context.Context, caller string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governance.Execute(ctx, commands.ExecuteCommand{
		ProposalID: proposalID,
		Caller:     caller,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, entities.ProposalStateExecuted), nil
}

func (h Handler) CancelHandler(ctx context.Context, caller string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Governance.Cancel(ctx, commands.CancelCommand{
		ProposalID: proposalID,
		Caller:     caller,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, entities.ProposalStateCanceled), nil
}

func mapProposal(proposal entities.Proposal, state entities.ProposalState) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:   proposal.ProposalID,
		AssetID:      proposal.AssetID,
		Proposer:     proposal.Proposer,
		Description:  proposal.Description,
		State:        string(state),
		StartAt:      formatTime(proposal.StartAt),
		EndAt:        formatTime(proposal.EndAt),
		Quorum:       proposal.Quorum,
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		Executed:     proposal.Executed,
		Canceled:     proposal.Canceled,
		CreatedAt:    formatTime(proposal.CreatedAt),
	}
}

func mapReceipt(receipt entities.VoteReceipt) httptransport.ReceiptResponse {
	return httptransport.ReceiptResponse{
		ProposalID: receipt.ProposalID,
		Voter:      receipt.Voter,
		AssetID:    receipt.AssetID,
		Support:    receipt.Support,
		Weight:     receipt.Weight,
		AssetVotes: receipt.AssetVotes,
		CastAt:     formatTime(receipt.CastAt),
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
