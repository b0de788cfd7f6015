package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	fractionledger "syndicate/contexts/collective-ownership/fraction-ledger"
	"syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/domain/royalty"
	"syndicate/internal/shared/fault"
	"syndicate/internal/shared/sequencer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, mode royalty.Mode) fractionledger.Module {
	t.Helper()
	module := fractionledger.NewInMemoryModule(sequencer.New(), mode, nil)
	module.Store.SetNow(epoch)
	return module
}

func createAsset(t *testing.T, module fractionledger.Module, assetID string, holder string, total uint64, eligible bool) {
	t.Helper()
	_, err := module.Ledger.CreateAsset(context.Background(), commands.CreateAssetCommand{
		AssetID:          assetID,
		InitialHolder:    holder,
		Name:             "Asset " + assetID,
		Symbol:           "FRX",
		TotalFractions:   total,
		RoyaltyBps:       250,
		RageQuitEligible: eligible,
	})
	require.NoError(t, err)
}

func position(t *testing.T, module fractionledger.Module, assetID string, holder string) entities.Position {
	t.Helper()
	got, err := module.Queries.GetPosition(context.Background(), assetID, holder)
	require.NoError(t, err)
	return got
}

func votingPower(t *testing.T, module fractionledger.Module, holder string) uint64 {
	t.Helper()
	got, err := module.Queries.VotingPower(context.Background(), holder)
	require.NoError(t, err)
	return got.Power
}

func assertConserved(t *testing.T, module fractionledger.Module, assetID string) {
	t.Helper()
	report, err := module.Queries.Conservation(context.Background(), assetID)
	require.NoError(t, err)
	assert.True(t, report.Balanced, "positions %d available %d", report.PositionSum, report.AvailableFractions)
}

func assertPowerMatchesPositions(t *testing.T, module fractionledger.Module, holders ...string) {
	t.Helper()
	for _, holder := range holders {
		cached := votingPower(t, module, holder)
		result, err := module.Ledger.RecomputePower(context.Background(), holder)
		require.NoError(t, err)
		assert.Equal(t, cached, result.Recomputed, "holder %s", holder)
		assert.False(t, result.Drifted(), "holder %s", holder)
	}
}

func TestCreateAssetSeedsInitialHolder(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	asset, err := module.Queries.GetAsset(context.Background(), "asset-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), asset.TotalFractions)
	assert.Equal(t, uint64(10), asset.AvailableFractions)
	assert.Equal(t, uint64(10), position(t, module, "asset-a", "holder-h").Amount)
	assert.Equal(t, uint64(10), votingPower(t, module, "holder-h"))
	assert.Equal(t, []string{"ledger.asset_created"}, module.Store.PendingEventTypes())
	assertConserved(t, module, "asset-a")
}

func TestCreateAssetRejectsInvalidInput(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	cases := []struct {
		name string
		cmd  commands.CreateAssetCommand
		want error
	}{
		{"duplicate", commands.CreateAssetCommand{AssetID: "asset-a", InitialHolder: "h", TotalFractions: 1}, domainerrors.ErrAssetExists},
		{"empty holder", commands.CreateAssetCommand{AssetID: "asset-b", TotalFractions: 1}, domainerrors.ErrNullHolder},
		{"zero total", commands.CreateAssetCommand{AssetID: "asset-b", InitialHolder: "h"}, domainerrors.ErrZeroAmount},
		{"royalty above 100%", commands.CreateAssetCommand{AssetID: "asset-b", InitialHolder: "h", TotalFractions: 1, RoyaltyBps: 10001}, domainerrors.ErrInvalidRoyaltyRate},
		{"empty id", commands.CreateAssetCommand{InitialHolder: "h", TotalFractions: 1}, domainerrors.ErrInvalidAssetID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := module.Ledger.CreateAsset(context.Background(), tc.cmd)
			require.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, fault.KindInvariantViolation, fault.KindOf(domainerrors.ErrAssetExists))
}

func TestDelegateMovesBalanceOnce(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	result, err := module.Ledger.Delegate(context.Background(), commands.DelegateCommand{
		AssetID: "asset-a", From: "holder-h", To: "delegate-d", Amount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.From.Amount)
	assert.Equal(t, "delegate-d", result.From.DelegatedTo)
	assert.Equal(t, uint64(5), result.To.Amount)
	assert.Empty(t, result.To.DelegatedTo)
	assert.True(t, result.To.IsDelegateReceiver)

	assert.Equal(t, uint64(5), votingPower(t, module, "holder-h"))
	assert.Equal(t, uint64(5), votingPower(t, module, "delegate-d"))

	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{
		AssetID: "asset-a", From: "holder-h", To: "other", Amount: 1,
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyDelegated)

	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "other", Amount: 1,
	})
	require.ErrorIs(t, err, domainerrors.ErrDelegatedPosition)
	assertConserved(t, module, "asset-a")
	assertPowerMatchesPositions(t, module, "holder-h", "delegate-d")
}

func TestDelegateRejectsInvalidArguments(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	_, err := module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "asset-a", From: "holder-h", To: "holder-h", Amount: 1})
	require.ErrorIs(t, err, domainerrors.ErrSelfDelegation)
	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "asset-a", From: "holder-h", To: " ", Amount: 1})
	require.ErrorIs(t, err, domainerrors.ErrNullHolder)
	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "asset-a", From: "holder-h", To: "d"})
	require.ErrorIs(t, err, domainerrors.ErrZeroAmount)
	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "asset-a", From: "holder-h", To: "d", Amount: 11})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "missing", From: "holder-h", To: "d", Amount: 1})
	require.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestTransferWholeBalanceThenOverdraw(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "receiver-r", Amount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), position(t, module, "asset-a", "holder-h").Amount)
	assert.Equal(t, uint64(10), position(t, module, "asset-a", "receiver-r").Amount)

	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "receiver-r", Amount: 1,
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
	assert.Equal(t, fault.KindInvariantViolation, fault.KindOf(err))

	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "nobody", To: "receiver-r", Amount: 1,
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)
	assertConserved(t, module, "asset-a")
	assertPowerMatchesPositions(t, module, "holder-h", "receiver-r")
}

func TestTransferToSelfLeavesBalances(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "holder-h", Amount: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), position(t, module, "asset-a", "holder-h").Amount)
	assert.Equal(t, uint64(10), votingPower(t, module, "holder-h"))
}

func TestTransferIntoVotedPositionAddsNoPower(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "voter-v", Amount: 3,
	})
	require.NoError(t, err)
	_, err = module.Ledger.MarkActedForVote(context.Background(), "asset-a", "voter-v")
	require.NoError(t, err)

	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "voter-v", Amount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), position(t, module, "asset-a", "voter-v").Amount)
	assert.Equal(t, uint64(0), votingPower(t, module, "voter-v"))
	assertConserved(t, module, "asset-a")
	assertPowerMatchesPositions(t, module, "holder-h", "voter-v")
}

func TestMarkActedForVoteFreezesPosition(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	createAsset(t, module, "asset-b", "holder-h", 7, false)

	mark, err := module.Ledger.MarkActedForVote(context.Background(), "asset-a", "holder-h")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), mark.Amount)
	assert.Equal(t, uint64(17), mark.PowerBefore)
	assert.Equal(t, uint64(7), mark.PowerAfter)
	assert.Equal(t, uint64(7), votingPower(t, module, "holder-h"))

	got := position(t, module, "asset-a", "holder-h")
	assert.Equal(t, entities.PositionStatusVoted, got.Status)
	assert.Equal(t, epoch, got.LastActionAt)

	_, err = module.Ledger.MarkActedForVote(context.Background(), "asset-a", "holder-h")
	require.ErrorIs(t, err, domainerrors.ErrPositionActed)
	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{AssetID: "asset-a", From: "holder-h", To: "x", Amount: 1})
	require.ErrorIs(t, err, domainerrors.ErrPositionActed)
	_, err = module.Ledger.Delegate(context.Background(), commands.DelegateCommand{AssetID: "asset-a", From: "holder-h", To: "x", Amount: 1})
	require.ErrorIs(t, err, domainerrors.ErrPositionActed)

	_, err = module.Ledger.MarkActedForVote(context.Background(), "asset-a", "stranger")
	require.ErrorIs(t, err, domainerrors.ErrNoVotingBalance)
}

func TestRageQuitBurnsEligiblePositions(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-b", "holder-h", 10, true)
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	createAsset(t, module, "asset-c", "holder-h", 4, false)

	result, err := module.Ledger.RageQuit(context.Background(), "holder-h")
	require.NoError(t, err)
	assert.Equal(t, []string{"asset-a", "asset-b"}, result.Assets)
	assert.Equal(t, uint64(20), result.Burned)

	for _, assetID := range []string{"asset-a", "asset-b"} {
		got := position(t, module, assetID, "holder-h")
		assert.Equal(t, uint64(0), got.Amount)
		assert.Equal(t, entities.PositionStatusExited, got.Status)
		asset, err := module.Queries.GetAsset(context.Background(), assetID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), asset.AvailableFractions)
		assertConserved(t, module, assetID)
	}
	assert.Equal(t, uint64(4), votingPower(t, module, "holder-h"))

	exited, err := module.Queries.HasRageQuit(context.Background(), "holder-h")
	require.NoError(t, err)
	assert.True(t, exited)

	_, err = module.Ledger.RageQuit(context.Background(), "holder-h")
	require.ErrorIs(t, err, domainerrors.ErrAlreadyRageQuit)
	assert.Equal(t, fault.KindAlreadyDone, fault.KindOf(err))
	assertPowerMatchesPositions(t, module, "holder-h")
}

func TestRageQuitLeavesDelegatedInBalances(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.Delegate(context.Background(), commands.DelegateCommand{
		AssetID: "asset-a", From: "holder-h", To: "delegate-d", Amount: 6,
	})
	require.NoError(t, err)

	_, err = module.Ledger.RageQuit(context.Background(), "delegate-d")
	require.ErrorIs(t, err, domainerrors.ErrNothingToRageQuit)
	exited, err := module.Queries.HasRageQuit(context.Background(), "delegate-d")
	require.NoError(t, err)
	assert.False(t, exited)

	result, err := module.Ledger.RageQuit(context.Background(), "holder-h")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result.Burned)
	assert.Equal(t, uint64(6), position(t, module, "asset-a", "delegate-d").Amount)
	assertConserved(t, module, "asset-a")
}

func TestRageQuitBurnsVotedPositionWithoutDoubleDebit(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	createAsset(t, module, "asset-b", "holder-h", 5, true)
	_, err := module.Ledger.MarkActedForVote(context.Background(), "asset-a", "holder-h")
	require.NoError(t, err)

	result, err := module.Ledger.RageQuit(context.Background(), "holder-h")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), result.Burned)
	assert.Equal(t, uint64(0), votingPower(t, module, "holder-h"))
	assertConserved(t, module, "asset-a")
	assertConserved(t, module, "asset-b")
}

func TestRoyaltyClaimPaysProportionalShare(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "holder-r", Amount: 4,
	})
	require.NoError(t, err)
	_, err = module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "marketplace", Amount: 1000,
	})
	require.NoError(t, err)

	claim, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{
		AssetID: "asset-a", Holder: "holder-r",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(400), claim.Share)
	assert.Equal(t, uint64(600), claim.Remaining)

	movements := module.Store.Movements()
	require.Len(t, movements, 2)
	assert.Equal(t, entities.ValueDirectionIn, movements[0].Direction)
	assert.Equal(t, "marketplace", movements[0].Party)
	assert.Equal(t, entities.ValueDirectionOut, movements[1].Direction)
	assert.Equal(t, "holder-r", movements[1].Party)
	assert.Equal(t, uint64(400), movements[1].Amount)

	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{
		AssetID: "asset-a", Holder: "holder-r",
	})
	require.ErrorIs(t, err, domainerrors.ErrZeroShare)
}

func TestPoolModeUsesCurrentPool(t *testing.T) {
	module := newLedger(t, royalty.ModePool)
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "holder-h", To: "holder-r", Amount: 4,
	})
	require.NoError(t, err)
	_, err = module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "marketplace", Amount: 1000,
	})
	require.NoError(t, err)

	first, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-r"})
	require.NoError(t, err)
	assert.Equal(t, uint64(400), first.Share)
	second, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-r"})
	require.NoError(t, err)
	assert.Equal(t, uint64(240), second.Share)
	assert.Equal(t, uint64(360), second.Remaining)
}

func TestRoyaltyRoundTripLeavesBoundedDust(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "h1", 7, true)
	for _, to := range []string{"h2", "h3"} {
		_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
			AssetID: "asset-a", From: "h1", To: to, Amount: 2,
		})
		require.NoError(t, err)
	}
	const deposit = 1000
	_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: deposit,
	})
	require.NoError(t, err)

	var expected uint64
	for _, holder := range []string{"h1", "h2", "h3"} {
		amount := position(t, module, "asset-a", holder).Amount
		expected += deposit * amount / 7
		_, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: holder})
		require.NoError(t, err)
	}
	asset, err := module.Queries.GetAsset(context.Background(), "asset-a")
	require.NoError(t, err)
	assert.Equal(t, deposit-expected, asset.AccumulatedRoyalties)
	assert.LessOrEqual(t, asset.AccumulatedRoyalties, asset.TotalFractions-1)
}

func TestRoyaltyAfterPartialRageQuitStaysBelowDeposit(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "h1", 10, true)
	_, err := module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "h1", To: "h2", Amount: 5,
	})
	require.NoError(t, err)
	_, err = module.Ledger.RageQuit(context.Background(), "h2")
	require.NoError(t, err)

	_, err = module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: 1000,
	})
	require.NoError(t, err)
	claim, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "h1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), claim.Share)

	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "h2"})
	require.ErrorIs(t, err, domainerrors.ErrNoFractions)
	assert.Equal(t, uint64(500), claim.Remaining)
}

func TestRoyaltyEarnedBeforeTransferStaysWithSeller(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "seller", 10, true)
	_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: 100,
	})
	require.NoError(t, err)
	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
		AssetID: "asset-a", From: "seller", To: "buyer", Amount: 10,
	})
	require.NoError(t, err)

	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "buyer"})
	require.ErrorIs(t, err, domainerrors.ErrZeroShare)
	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "seller"})
	require.ErrorIs(t, err, domainerrors.ErrNoFractions)
	assert.Equal(t, uint64(100), position(t, module, "asset-a", "seller").RoyaltyOwed)
}

func TestPostDepositRecipientShareByMode(t *testing.T) {
	cases := []struct {
		mode  royalty.Mode
		share uint64
		err   error
	}{
		{mode: royalty.ModeCheckpoint, err: domainerrors.ErrZeroShare},
		{mode: royalty.ModePool, share: 400},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			module := newLedger(t, tc.mode)
			createAsset(t, module, "asset-a", "holder-h", 10, true)
			_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
				AssetID: "asset-a", Payer: "marketplace", Amount: 1000,
			})
			require.NoError(t, err)
			_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{
				AssetID: "asset-a", From: "holder-h", To: "holder-r", Amount: 4,
			})
			require.NoError(t, err)

			claim, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-r"})
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.share, claim.Share)
		})
	}
}

func TestClaimRoyaltyPreconditions(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)

	_, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
	require.ErrorIs(t, err, domainerrors.ErrNoRoyalties)
	_, err = module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{AssetID: "asset-a", Payer: "p"})
	require.ErrorIs(t, err, domainerrors.ErrZeroAmount)
	assert.Equal(t, fault.KindInvalidArgument, fault.KindOf(err))

	_, err = module.Ledger.Transfer(context.Background(), commands.TransferCommand{AssetID: "asset-a", From: "holder-h", To: "tiny", Amount: 1})
	require.NoError(t, err)
	_, err = module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{AssetID: "asset-a", Payer: "p", Amount: 5})
	require.NoError(t, err)
	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "tiny"})
	require.ErrorIs(t, err, domainerrors.ErrZeroShare)
}

func TestFailedPayoutRollsBackClaim(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: 100,
	})
	require.NoError(t, err)
	pending := len(module.Store.PendingEventTypes())

	rail := errors.New("payment rail offline")
	module.Store.FailPayments(rail)
	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
	require.ErrorIs(t, err, rail)

	asset, err := module.Queries.GetAsset(context.Background(), "asset-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), asset.AccumulatedRoyalties)
	assert.Equal(t, uint64(0), position(t, module, "asset-a", "holder-h").RoyaltyOwed)
	assert.Len(t, module.Store.PendingEventTypes(), pending)

	module.Store.FailPayments(nil)
	claim, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), claim.Share)
}

func TestReentrantClaimFromPayoutIsRejected(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: 100,
	})
	require.NoError(t, err)

	var reentrant error
	module.Store.SetPayHook(func(ctx context.Context, _ entities.ValueMovement) error {
		_, reentrant = module.Ledger.ClaimRoyalty(ctx, commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
		return nil
	})

	claim, err := module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), claim.Share)
	require.ErrorIs(t, reentrant, domainerrors.ErrReentrantCall)

	asset, err := module.Queries.GetAsset(context.Background(), "asset-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), asset.AccumulatedRoyalties)
	require.Len(t, module.Store.Movements(), 2)
}

func TestConcurrentReadDuringFailedClaimSeesCommittedState(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	_, err := module.Ledger.DepositRoyalty(context.Background(), commands.DepositRoyaltyCommand{
		AssetID: "asset-a", Payer: "payer", Amount: 1000,
	})
	require.NoError(t, err)

	reads := make(chan uint64, 1)
	bankDown := errors.New("bank offline")
	module.Store.SetPayHook(func(context.Context, entities.ValueMovement) error {
		go func() {
			asset, err := module.Queries.GetAsset(context.Background(), "asset-a")
			if err != nil {
				close(reads)
				return
			}
			reads <- asset.AccumulatedRoyalties
		}()
		return bankDown
	})

	_, err = module.Ledger.ClaimRoyalty(context.Background(), commands.ClaimRoyaltyCommand{AssetID: "asset-a", Holder: "holder-h"})
	require.ErrorIs(t, err, bankDown)

	select {
	case accumulated, ok := <-reads:
		require.True(t, ok, "concurrent read failed")
		assert.Equal(t, uint64(1000), accumulated)
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent read never completed")
	}
}

func TestRecomputePowerRepairsDrift(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "holder-h", 10, true)
	module.Store.SetPower("holder-h", 3)

	result, err := module.Ledger.RecomputePower(context.Background(), "holder-h")
	require.NoError(t, err)
	assert.True(t, result.Drifted())
	assert.Equal(t, uint64(3), result.Cached)
	assert.Equal(t, uint64(10), result.Recomputed)
	assert.Equal(t, uint64(10), votingPower(t, module, "holder-h"))
}

func TestUnknownHolderHasZeroPower(t *testing.T) {
	module := newLedger(t, "")
	assert.Equal(t, uint64(0), votingPower(t, module, "ghost"))
}

func TestConservationAcrossMixedOperations(t *testing.T) {
	module := newLedger(t, "")
	createAsset(t, module, "asset-a", "h1", 100, true)
	ctx := context.Background()

	steps := []func() error{
		func() error {
			_, err := module.Ledger.Transfer(ctx, commands.TransferCommand{AssetID: "asset-a", From: "h1", To: "h2", Amount: 30})
			return err
		},
		func() error {
			_, err := module.Ledger.Delegate(ctx, commands.DelegateCommand{AssetID: "asset-a", From: "h2", To: "h3", Amount: 10})
			return err
		},
		func() error {
			_, err := module.Ledger.Transfer(ctx, commands.TransferCommand{AssetID: "asset-a", From: "h1", To: "h3", Amount: 5})
			return err
		},
		func() error {
			_, err := module.Ledger.MarkActedForVote(ctx, "asset-a", "h3")
			return err
		},
		func() error {
			_, err := module.Ledger.RageQuit(ctx, "h1")
			return err
		},
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertConserved(t, module, "asset-a")
	}
	asset, err := module.Queries.GetAsset(ctx, "asset-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(35), asset.AvailableFractions)
	assertPowerMatchesPositions(t, module, "h1", "h2", "h3")
}
