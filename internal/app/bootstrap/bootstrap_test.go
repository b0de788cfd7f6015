package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ledgercommands "syndicate/contexts/collective-ownership/fraction-ledger/application/commands"
	ledgerentities "syndicate/contexts/collective-ownership/fraction-ledger/domain/entities"
	governancecommands "syndicate/contexts/collective-ownership/governance-engine/application/commands"
	"syndicate/contexts/collective-ownership/governance-engine/domain/entities"
	"syndicate/internal/platform/config"
	"syndicate/internal/platform/messaging"
	"syndicate/internal/shared/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func memoryConfig() config.Config {
	cfg := config.Defaults()
	cfg.Admins = []string{"admin"}
	cfg.VotingDelay = time.Second
	cfg.VotingPeriod = 5 * time.Second
	cfg.Quorum = 1
	return cfg
}

func buildMemory(t *testing.T) *Components {
	t.Helper()
	c, err := Build(memoryConfig(), nil)
	require.NoError(t, err)
	c.Ledger.Store.SetNow(epoch)
	return c
}

func seedAsset(t *testing.T, c *Components) {
	t.Helper()
	ctx := context.Background()
	_, err := c.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		AssetID:        "asset-a",
		InitialHolder:  "alice",
		Name:           "Harbour Loft",
		Symbol:         "HLOFT",
		TotalFractions: 100,
	})
	require.NoError(t, err)
	_, err = c.Ledger.Ledger.Transfer(ctx, ledgercommands.TransferCommand{
		AssetID: "asset-a",
		From:    "alice",
		To:      "bob",
		Amount:  40,
	})
	require.NoError(t, err)
	_, err = c.Governance.Governance.SetAssetEligibility(ctx, governancecommands.SetAssetEligibilityCommand{
		AssetID:  "asset-a",
		Eligible: true,
		Caller:   "admin",
	})
	require.NoError(t, err)
}

func TestMemoryBuildRunsGovernanceAgainstLedger(t *testing.T) {
	c := buildMemory(t)
	ctx := context.Background()
	seedAsset(t, c)

	proposal, err := c.Governance.Governance.Propose(ctx, governancecommands.ProposeCommand{
		AssetID:     "asset-a",
		Proposer:    "alice",
		Description: "replace the roof",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.ProposalID)
	assert.Equal(t, epoch.Add(time.Second), proposal.StartAt)

	c.Ledger.Store.Advance(2 * time.Second)

	alice, err := c.Governance.Governance.CastVote(ctx, governancecommands.CastVoteCommand{
		ProposalID: proposal.ProposalID,
		Support:    true,
		AssetID:    "asset-a",
		Voter:      "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(60), alice.Receipt.Weight)

	bob, err := c.Governance.Governance.CastVote(ctx, governancecommands.CastVoteCommand{
		ProposalID: proposal.ProposalID,
		AssetID:    "asset-a",
		Voter:      "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bob.Proposal.AgainstVotes)

	power, err := c.Ledger.Queries.VotingPower(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, power.Power)
	position, err := c.Ledger.Queries.GetPosition(ctx, "asset-a", "alice")
	require.NoError(t, err)
	assert.Equal(t, ledgerentities.PositionStatusVoted, position.Status)

	_, err = c.Governance.Governance.CastVote(ctx, governancecommands.CastVoteCommand{
		ProposalID: proposal.ProposalID,
		Support:    true,
		AssetID:    "asset-a",
		Voter:      "alice",
	})
	require.Error(t, err)

	c.Ledger.Store.Advance(5 * time.Second)
	view, err := c.Governance.Queries.GetProposal(ctx, proposal.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateSucceeded, view.State)

	executed, err := c.Governance.Governance.Execute(ctx, governancecommands.ExecuteCommand{
		ProposalID: proposal.ProposalID,
		Caller:     "carol",
	})
	require.NoError(t, err)
	assert.True(t, executed.Executed)

	assert.Contains(t, c.Ledger.Store.PendingEventTypes(), "ledger.position_voted")
	assert.Equal(t, []string{
		"governance.asset_eligibility_set",
		"governance.proposal_created",
		"governance.vote_cast",
		"governance.vote_cast",
		"governance.proposal_executed",
	}, c.Governance.Store.PendingEventTypes())
}

func TestChainedUnitOfWorkRollsBackBothStores(t *testing.T) {
	c := buildMemory(t)
	ctx := context.Background()
	seedAsset(t, c)

	bridge := ledgerBridge{ledger: c.Ledger.Ledger, queries: c.Ledger.Queries}
	tx := chainedUnitOfWork{c.Governance.Store, c.Ledger.Store}
	boom := errors.New("tally write failed")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		mark, err := bridge.MarkActedForVote(ctx, "asset-a", "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(60), mark.PowerBefore)
		require.NoError(t, c.Governance.Store.SaveEligibility(ctx, entities.AssetEligibility{AssetID: "asset-a"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	position, err := c.Ledger.Queries.GetPosition(ctx, "asset-a", "alice")
	require.NoError(t, err)
	assert.Equal(t, ledgerentities.PositionStatusActive, position.Status)
	power, err := bridge.VotingPower(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), power)
	eligible, err := c.Governance.Queries.IsAssetEligible(ctx, "asset-a")
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestLedgerBridgeReportsUnknownAsset(t *testing.T) {
	c := buildMemory(t)
	bridge := ledgerBridge{ledger: c.Ledger.Ledger, queries: c.Ledger.Queries}

	exists, err := bridge.AssetExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWorkerRelaysBothOutboxes(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := buildMemory(t)
	seedAsset(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	bus := messaging.NewBus(nil)
	var (
		mu       sync.Mutex
		received []string
	)
	record := func(_ context.Context, event events.Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.EventType)
		return nil
	}
	ledgerDone := bus.Subscribe(ctx, "syndicate.ledger.asset_created", record)
	governanceDone := bus.Subscribe(ctx, "syndicate.governance.asset_eligibility_set", record)

	worker := NewWorker(c, bus)
	require.NoError(t, worker.RunOnce(ctx))
	assert.Empty(t, c.Ledger.Store.PendingEventTypes())
	assert.Empty(t, c.Governance.Store.PendingEventTypes())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-ledgerDone
	<-governanceDone
	require.NoError(t, worker.Close())
}

func TestSQLiteBuildPersistsAcrossModules(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageDriver = config.DriverSQLite
	cfg.SQLitePath = t.TempDir()

	c, err := Build(cfg, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()
	require.NotNil(t, c.Database())
	seedAsset(t, c)

	ctx := context.Background()
	proposal, err := c.Governance.Governance.Propose(ctx, governancecommands.ProposeCommand{
		AssetID:  "asset-a",
		Proposer: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.ProposalID)

	report, err := c.Ledger.Queries.Conservation(ctx, "asset-a")
	require.NoError(t, err)
	assert.True(t, report.Balanced)

	pending, err := c.GovernanceOutbox.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	require.NoError(t, NewWorker(c, messaging.NewBus(nil)).RunOnce(ctx))
	pending, err = c.GovernanceOutbox.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBuildRejectsUnknownModes(t *testing.T) {
	cfg := memoryConfig()
	cfg.RoyaltyMode = "lottery"
	_, err := Build(cfg, nil)
	require.Error(t, err)

	cfg = memoryConfig()
	cfg.StorageDriver = "etcd"
	_, err = Build(cfg, nil)
	require.Error(t, err)
}
