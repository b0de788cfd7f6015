package outbox

import "time"

// Outbox row statuses. Rows are written inside the same transaction as the
// state change and flipped to published by the relay worker.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Message is a persisted outbox row.
type Message struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}
