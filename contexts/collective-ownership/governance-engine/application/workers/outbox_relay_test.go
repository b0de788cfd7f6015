package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	postgresadapter "syndicate/contexts/collective-ownership/governance-engine/adapters/postgres"
	"syndicate/contexts/collective-ownership/governance-engine/ports"
	"syndicate/internal/platform/db"
	"syndicate/internal/shared/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type stubPublisher struct {
	events []ports.EventEnvelope
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.err != nil {
		return p.err
	}
	event.EventType = topic
	p.events = append(p.events, event)
	return nil
}

func newRepository(t *testing.T) *postgresadapter.Repository {
	t.Helper()
	database, err := db.ConnectSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	repo := postgresadapter.NewRepository(database.DB, nil)
	require.NoError(t, repo.AutoMigrate(context.Background()))
	return repo
}

func appendProposalEvent(t *testing.T, repo *postgresadapter.Repository, id string, eventType string, at time.Time) {
	t.Helper()
	envelope, err := events.New(id, eventType, "governance-engine", "proposal_id", "1", at, map[string]any{"proposal_id": 1})
	require.NoError(t, err)
	require.NoError(t, repo.AppendOutbox(context.Background(), envelope))
}

func TestOutboxRelayRespectsBatchSizeAndOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newRepository(t)
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	appendProposalEvent(t, repo, "evt-c", "governance.proposal_executed", base.Add(2*time.Minute))
	appendProposalEvent(t, repo, "evt-a", "governance.proposal_created", base)
	appendProposalEvent(t, repo, "evt-b", "governance.vote_cast", base.Add(time.Minute))

	publisher := &stubPublisher{}
	relay := OutboxRelay{
		Outbox:      repo,
		Publisher:   publisher,
		Clock:       postgresadapter.SystemClock{},
		TopicPrefix: "syndicate.",
		BatchSize:   2,
	}

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)

	require.Len(t, publisher.events, 3)
	assert.Equal(t, "syndicate.governance.proposal_created", publisher.events[0].EventType)
	assert.Equal(t, "syndicate.governance.vote_cast", publisher.events[1].EventType)
	assert.Equal(t, "syndicate.governance.proposal_executed", publisher.events[2].EventType)

	pending, err := repo.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelayKeepsRowsPendingOnPublishError(t *testing.T) {
	repo := newRepository(t)
	appendProposalEvent(t, repo, "evt-a", "governance.proposal_created", time.Now().UTC())

	relay := OutboxRelay{Outbox: repo, Publisher: &stubPublisher{err: errors.New("nats down")}}
	published, err := relay.RunOnce(context.Background())
	require.EqualError(t, err, "nats down")
	assert.Zero(t, published)

	pending, err := repo.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "evt-a", pending[0].OutboxID)
}
