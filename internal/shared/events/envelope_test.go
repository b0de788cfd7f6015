package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStampsEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	envelope, err := New("evt-1", "ledger.asset_created", "fraction-ledger", "asset_id", "asset-a", at, map[string]any{
		"asset_id": "asset-a",
		"total":    100,
	})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", envelope.TraceID)
	assert.Equal(t, 1, envelope.SchemaVersion)
	assert.Equal(t, time.UTC, envelope.OccurredAt.Location())
	assert.True(t, envelope.OccurredAt.Equal(at))
	assert.JSONEq(t, `{"asset_id":"asset-a","total":100}`, string(envelope.Data))
}

func TestNewRejectsUnencodablePayload(t *testing.T) {
	_, err := New("evt-1", "ledger.asset_created", "fraction-ledger", "asset_id", "asset-a", time.Now(), map[string]any{
		"bad": make(chan int),
	})
	require.Error(t, err)
}
