package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	"syndicate/contexts/collective-ownership/fraction-ledger/application/queries"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	httptransport "syndicate/contexts/collective-ownership/fraction-ledger/transport/http"
)

type Handler struct {
	Ledger  commands.LedgerUseCase
	Queries queries.LedgerQueries
	Logger  *slog.Logger
}

// CreateAssetHandler godoc
// @Summary Fractionalize an asset
// @Description Mints the full supply to the initial holder, who defaults to the caller.
// @Tags fraction-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.CreateAssetRequest true "Asset definition"
// @Success 201 {object} httptransport.AssetResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/assets [post]
func (h Handler) CreateAssetHandler(
	ctx context.Context,
	req httptransport.CreateAssetRequest,
) (httptransport.AssetResponse, error) {
	asset, err := h.Ledger.CreateAsset(ctx, commands.CreateAssetCommand{
		AssetID:          req.AssetID,
		InitialHolder:    req.InitialHolder,
		Name:             req.Name,
		Symbol:           req.Symbol,
		URI:              req.URI,
		TotalFractions:   req.TotalFractions,
		RoyaltyBps:       req.RoyaltyBps,
		RageQuitEligible: req.RageQuitEligible,
	})
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

func (h Handler) GetAssetHandler(ctx context.Context, assetID string) (httptransport.AssetResponse, error) {
	asset, err := h.Queries.GetAsset(ctx, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

func (h Handler) GetPositionHandler(ctx context.Context, assetID string, holder string) (httptransport.PositionResponse, error) {
	position, err := h.Queries.GetPosition(ctx, assetID, holder)
	if err != nil {
		return httptransport.PositionResponse{}, err
	}
	return mapPosition(position), nil
}

func (h Handler) ListPositionsHandler(ctx context.Context, assetID string) (httptransport.PositionListResponse, error) {
	positions, err := h.Queries.ListPositions(ctx, assetID)
	if err != nil {
		return httptransport.PositionListResponse{}, err
	}
	items := make([]httptransport.PositionResponse, 0, len(positions))
	for _, position := range positions {
		items = append(items, mapPosition(position))
	}
	return httptransport.PositionListResponse{Items: items}, nil
}

// TransferHandler godoc
// @Summary Transfer fractions
// @Tags fraction-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param asset_id path string true "Asset id"
// @Param request body httptransport.MoveRequest true "Recipient and amount"
// @Success 200 {object} httptransport.MoveResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/assets/{asset_id}/transfers [post]
func (h Handler) TransferHandler(
	ctx context.Context,
	assetID string,
	from string,
	req httptransport.MoveRequest,
) (httptransport.MoveResponse, error) {
	result, err := h.Ledger.Transfer(ctx, commands.TransferCommand{
		AssetID: assetID,
		From:    from,
		To:      req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.MoveResponse{}, err
	}
	return mapMove(result), nil
}

func (h Handler) DelegateHandler(
	ctx context.Context,
	assetID string,
	from string,
	req httptransport.MoveRequest,
) (httptransport.MoveResponse, error) {
	result, err := h.Ledger.Delegate(ctx, commands.DelegateCommand{
		AssetID: assetID,
		From:    from,
		To:      req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.MoveResponse{}, err
	}
	return mapMove(result), nil
}

func (h Handler) DepositRoyaltyHandler(
	ctx context.Context,
	assetID string,
	payer string,
	req httptransport.DepositRoyaltyRequest,
) (httptransport.AssetResponse, error) {
	asset, err := h.Ledger.DepositRoyalty(ctx, commands.DepositRoyaltyCommand{
		AssetID: assetID,
		Payer:   payer,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

func (h Handler) ClaimRoyaltyHandler(ctx context.Context, assetID string, holder string) (httptransport.RoyaltyClaimResponse, error) {
	claim, err := h.Ledger.ClaimRoyalty(ctx, commands.ClaimRoyaltyCommand{
		AssetID: assetID,
		Holder:  holder,
	})
	if err != nil {
		return httptransport.RoyaltyClaimResponse{}, err
	}
	return httptransport.RoyaltyClaimResponse{
		AssetID:   claim.AssetID,
		Holder:    claim.Holder,
		Share:     claim.Share,
		Remaining: claim.Remaining,
		ClaimedAt: formatTime(claim.ClaimedAt),
	}, nil
}

// RageQuitHandler godoc
// @Summary Exit every rage-quit eligible position
// @Description Burns the caller's fractions in eligible assets and pays out their share of each pool.
// @Tags fraction-ledger
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Success 200 {object} httptransport.RageQuitResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/holders/rage-quit [post]
func (h Handler) RageQuitHandler(ctx context.Context, holder string) (httptransport.RageQuitResponse, error) {
	result, err := h.Ledger.RageQuit(ctx, holder)
	if err != nil {
		return httptransport.RageQuitResponse{}, err
	}
	return httptransport.RageQuitResponse{
		Holder:   result.Holder,
		Assets:   result.Assets,
		Burned:   result.Burned,
		ExitedAt: formatTime(result.ExitedAt),
	}, nil
}

func (h Handler) VotingPowerHandler(ctx context.Context, holder string) (httptransport.VotingPowerResponse, error) {
	power, err := h.Queries.VotingPower(ctx, holder)
	if err != nil {
		return httptransport.VotingPowerResponse{}, err
	}
	exited, err := h.Queries.HasRageQuit(ctx, holder)
	if err != nil {
		return httptransport.VotingPowerResponse{}, err
	}
	return httptransport.VotingPowerResponse{
		Holder:      power.Holder,
		Power:       power.Power,
		HasRageQuit: exited,
	}, nil
}

func (h Handler) ConservationHandler(ctx context.Context, assetID string) (httptransport.ConservationResponse, error) {
	report, err := h.Queries.Conservation(ctx, assetID)
	if err != nil {
		return httptransport.ConservationResponse{}, err
	}
	return httptransport.ConservationResponse{
		AssetID:            report.AssetID,
		AvailableFractions: report.AvailableFractions,
		PositionSum:        report.PositionSum,
		Holders:            report.Holders,
		Balanced:           report.Balanced,
	}, nil
}

func mapAsset(asset entities.Asset) httptransport.AssetResponse {
	return httptransport.AssetResponse{
		AssetID:              asset.AssetID,
		Name:                 asset.Name,
		Symbol:               asset.Symbol,
		URI:                  asset.URI,
		RoyaltyBps:           asset.RoyaltyBps,
		TotalFractions:       asset.TotalFractions,
		AvailableFractions:   asset.AvailableFractions,
		AccumulatedRoyalties: asset.AccumulatedRoyalties,
		RageQuitEligible:     asset.RageQuitEligible,
		CreatedAt:            formatTime(asset.CreatedAt),
	}
}

func mapPosition(position entities.Position) httptransport.PositionResponse {
	return httptransport.PositionResponse{
		AssetID:            position.AssetID,
		Holder:             position.Holder,
		Amount:             position.Amount,
		Status:             string(position.Status),
		IsDelegateReceiver: position.IsDelegateReceiver,
		DelegatedTo:        position.DelegatedTo,
		RoyaltyOwed:        position.RoyaltyOwed,
		LastActionAt:       formatTime(position.LastActionAt),
	}
}

func mapMove(result commands.MoveResult) httptransport.MoveResponse {
	return httptransport.MoveResponse{
		From: mapPosition(result.From),
		To:   mapPosition(result.To),
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
