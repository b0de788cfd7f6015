package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"syndicate/internal/shared/events"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func envelope(t *testing.T, id string) events.Envelope {
	t.Helper()
	event, err := events.New(id, "governance.vote_cast", "governance-engine", "proposal_id", "7",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), map[string]any{"proposal_id": 7})
	require.NoError(t, err)
	return event
}

func TestBusDeliversToSubscribersUntilCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan events.Envelope, 1)
	done := bus.Subscribe(ctx, "syndicate.governance.vote_cast", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), "syndicate.governance.vote_cast", envelope(t, "evt-1")))
	select {
	case event := <-received:
		assert.Equal(t, "evt-1", event.EventID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	<-done
	require.NoError(t, bus.Publish(context.Background(), "syndicate.governance.vote_cast", envelope(t, "evt-2")))
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Publish(context.Background(), "nobody", envelope(t, "evt-1")))
}

func TestNATSMessageCarriesDedupHeader(t *testing.T) {
	msg, err := natsMessage("syndicate.governance.vote_cast", envelope(t, "evt-9"))
	require.NoError(t, err)
	assert.Equal(t, "syndicate.governance.vote_cast", msg.Subject)
	assert.Equal(t, "evt-9", msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "7", msg.Header.Get("Syndicate-Partition-Key"))

	var decoded events.Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "governance.vote_cast", decoded.EventType)
}
