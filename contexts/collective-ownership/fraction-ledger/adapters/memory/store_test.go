package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	domainerrors "syndicate/contexts/collective-ownership/fraction-ledger/domain/errors"
	"syndicate/contexts/collective-ownership/fraction-ledger/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxUndoesItsWritesOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.InsertAsset(ctx, entities.Asset{AssetID: "asset-a", TotalFractions: 5, AvailableFractions: 5}))
	require.NoError(t, store.SavePosition(ctx, entities.Position{AssetID: "asset-a", Holder: "h", Amount: 2}))
	require.NoError(t, store.Pay(ctx, "h", 1, "before"))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.SaveAsset(ctx, entities.Asset{AssetID: "asset-a", TotalFractions: 5, AvailableFractions: 1}))
		require.NoError(t, store.InsertAsset(ctx, entities.Asset{AssetID: "asset-b", TotalFractions: 3}))
		require.NoError(t, store.SavePosition(ctx, entities.Position{AssetID: "asset-a", Holder: "h", Amount: 4}))
		require.NoError(t, store.SavePosition(ctx, entities.Position{AssetID: "asset-a", Holder: "g", Amount: 4}))
		require.NoError(t, store.SaveExit(ctx, entities.HolderExit{Holder: "h", Assets: []string{"asset-a"}, ExitedAt: now}))
		require.NoError(t, store.Pay(ctx, "h", 3, "ref"))
		return store.WithinTx(ctx, func(context.Context) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	asset, err := store.GetAsset(ctx, "asset-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), asset.AvailableFractions)
	_, err = store.GetAsset(ctx, "asset-b")
	require.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
	positions, err := store.ListPositionsByAsset(ctx, "asset-a")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, uint64(2), positions[0].Amount)
	_, exited, err := store.GetExit(ctx, "h")
	require.NoError(t, err)
	assert.False(t, exited)
	movements := store.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, "before", movements[0].Reference)
}

func TestReadsOutsideTxWaitForItToFinish(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.InsertAsset(ctx, entities.Asset{AssetID: "asset-a", TotalFractions: 5, AvailableFractions: 5}))

	reads := make(chan uint64, 1)
	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, store.SaveAsset(txCtx, entities.Asset{AssetID: "asset-a", TotalFractions: 5, AvailableFractions: 1}))
		inside, err := store.GetAsset(txCtx, "asset-a")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), inside.AvailableFractions)

		go func() {
			asset, err := store.GetAsset(ctx, "asset-a")
			if err != nil {
				close(reads)
				return
			}
			reads <- asset.AvailableFractions
		}()
		select {
		case <-reads:
			t.Error("read outside the transaction did not wait")
		case <-time.After(50 * time.Millisecond):
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	select {
	case available, ok := <-reads:
		require.True(t, ok)
		assert.Equal(t, uint64(5), available)
	case <-time.After(2 * time.Second):
		t.Fatal("read outside the transaction never completed")
	}
}

func TestOutboxAppendIsUndoneWithSequence(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendOutbox(ctx, ports.EventEnvelope{EventID: "e1", EventType: "first", OccurredAt: now}))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.AppendOutbox(ctx, ports.EventEnvelope{EventID: "e2", EventType: "dropped", OccurredAt: now}))
		require.NoError(t, store.MarkOutboxPublished(ctx, "e1", now))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, store.PendingEventTypes())

	require.NoError(t, store.AppendOutbox(ctx, ports.EventEnvelope{EventID: "e3", EventType: "second", OccurredAt: now}))
	assert.Equal(t, []string{"first", "second"}, store.PendingEventTypes())
}

func TestSaveAssetRequiresExistingAsset(t *testing.T) {
	store := NewStore()
	err := store.SaveAsset(context.Background(), entities.Asset{AssetID: "ghost"})
	require.ErrorIs(t, err, domainerrors.ErrAssetNotFound)
}

func TestListingsAreOrdered(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for _, key := range [][2]string{{"b", "h2"}, {"a", "h2"}, {"a", "h1"}} {
		require.NoError(t, store.SavePosition(ctx, entities.Position{AssetID: key[0], Holder: key[1], Amount: 1}))
	}
	byAsset, err := store.ListPositionsByAsset(ctx, "a")
	require.NoError(t, err)
	require.Len(t, byAsset, 2)
	assert.Equal(t, "h1", byAsset[0].Holder)

	byHolder, err := store.ListPositionsByHolder(ctx, "h2")
	require.NoError(t, err)
	require.Len(t, byHolder, 2)
	assert.Equal(t, "a", byHolder[0].AssetID)
}

func TestClockCanBePinnedAndAdvanced(t *testing.T) {
	store := NewStore()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetNow(start)
	store.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), store.Now())
}
