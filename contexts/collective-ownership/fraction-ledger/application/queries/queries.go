package queries

import (
	"context"
	"strings"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"
)

type LedgerQueries struct {
	Repo ports.Repository
}

func (q LedgerQueries) GetAsset(ctx context.Context, assetID string) (entities.Asset, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return entities.Asset{}, domainerrors.ErrInvalidAssetID
	}
	return q.Repo.GetAsset(ctx, assetID)
}

func (q LedgerQueries) ListAssets(ctx context.Context) ([]entities.Asset, error) {
	return q.Repo.ListAssets(ctx)
}

// GetPosition returns the holder's position, or an empty active one when the
// holder never held the asset.
func (q LedgerQueries) GetPosition(ctx context.Context, assetID string, holder string) (entities.Position, error) {
	asset, err := q.GetAsset(ctx, assetID)
	if err != nil {
		return entities.Position{}, err
	}
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return entities.Position{}, domainerrors.ErrNullHolder
	}
	position, found, err := q.Repo.GetPosition(ctx, asset.AssetID, holder)
	if err != nil {
		return entities.Position{}, err
	}
	if !found {
		return entities.Position{
			AssetID: asset.AssetID,
			Holder:  holder,
			Status:  entities.PositionStatusActive,
		}, nil
	}
	return position, nil
}

func (q LedgerQueries) ListPositions(ctx context.Context, assetID string) ([]entities.Position, error) {
	asset, err := q.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return q.Repo.ListPositionsByAsset(ctx, asset.AssetID)
}

func (q LedgerQueries) ListHolderPositions(ctx context.Context, holder string) ([]entities.Position, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return nil, domainerrors.ErrNullHolder
	}
	return q.Repo.ListPositionsByHolder(ctx, holder)
}

// VotingPower returns the cached power; holders never seen have zero.
func (q LedgerQueries) VotingPower(ctx context.Context, holder string) (entities.HolderPower, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return entities.HolderPower{}, domainerrors.ErrNullHolder
	}
	power, found, err := q.Repo.GetPower(ctx, holder)
	if err != nil {
		return entities.HolderPower{}, err
	}
	if !found {
		return entities.HolderPower{Holder: holder}, nil
	}
	return power, nil
}

func (q LedgerQueries) HasRageQuit(ctx context.Context, holder string) (bool, error) {
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return false, domainerrors.ErrNullHolder
	}
	_, exited, err := q.Repo.GetExit(ctx, holder)
	return exited, err
}

// Conservation sums every position of the asset and compares it with the
// asset's available fractions.
func (q LedgerQueries) Conservation(ctx context.Context, assetID string) (entities.ConservationReport, error) {
	asset, err := q.GetAsset(ctx, assetID)
	if err != nil {
		return entities.ConservationReport{}, err
	}
	positions, err := q.Repo.ListPositionsByAsset(ctx, asset.AssetID)
	if err != nil {
		return entities.ConservationReport{}, err
	}
	report := entities.ConservationReport{
		AssetID:            asset.AssetID,
		AvailableFractions: asset.AvailableFractions,
	}
	for _, position := range positions {
		report.PositionSum += position.Amount
		if position.Amount > 0 {
			report.Holders++
		}
	}
	report.Balanced = report.PositionSum == asset.AvailableFractions &&
		asset.AvailableFractions <= asset.TotalFractions
	return report, nil
}
