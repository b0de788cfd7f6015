package bootstrap

import (
	"context"
	"errors"

	ledgercommands "syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	ledgerqueries "syndicate/contexts/collective-ownership/fraction-ledger/application/queries"
	ledgererrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	governanceports "syndicate/contexts/collective-ownership/governance-engine/ports"
)

// ledgerBridge presents the fraction ledger to governance. Calls run on the
// caller's context, so they join the governance transaction and sequencer slot.
type ledgerBridge struct {
	ledger  ledgercommands.LedgerUseCase
	queries ledgerqueries.LedgerQueries
}

func (b ledgerBridge) AssetExists(ctx context.Context, assetID string) (bool, error) {
	_, err := b.queries.GetAsset(ctx, assetID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ledgererrors.ErrAssetNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (b ledgerBridge) VotingPower(ctx context.Context, holder string) (uint64, error) {
	power, err := b.queries.VotingPower(ctx, holder)
	if err != nil {
		return 0, err
	}
	return power.Power, nil
}

func (b ledgerBridge) MarkActedForVote(ctx context.Context, assetID string, holder string) (governanceports.VoteMark, error) {
	mark, err := b.ledger.MarkActedForVote(ctx, assetID, holder)
	if err != nil {
		return governanceports.VoteMark{}, err
	}
	return governanceports.VoteMark{
		AssetID:     mark.AssetID,
		Holder:      mark.Holder,
		Amount:      mark.Amount,
		PowerBefore: mark.PowerBefore,
		PowerAfter:  mark.PowerAfter,
	}, nil
}

type unitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// chainedUnitOfWork nests the memory stores' transactions so a failure in
// either rolls both back.
type chainedUnitOfWork []unitOfWork

func (c chainedUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if len(c) == 0 {
		return fn(ctx)
	}
	return c[0].WithinTx(ctx, func(ctx context.Context) error {
		return c[1:].WithinTx(ctx, fn)
	})
}

var _ governanceports.Ledger = ledgerBridge{}
