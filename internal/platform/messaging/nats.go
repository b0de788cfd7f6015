package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"syndicate/internal/shared/events"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes outbox events as NATS messages, one subject per
// topic. The event id travels in the Nats-Msg-Id header so JetStream streams
// bound to those subjects drop redelivered events.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func ConnectNATS(url string, name string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected",
					"event", "nats_disconnected",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, event events.Envelope) error {
	msg, err := natsMessage(topic, event)
	if err != nil {
		return err
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", topic, err)
	}
	p.logger.Debug("event published",
		"event", "nats_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
	)
	return nil
}

func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

func natsMessage(topic string, event events.Envelope) (*nats.Msg, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", event.EventID, err)
	}
	msg := nats.NewMsg(topic)
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, event.EventID)
	msg.Header.Set("Syndicate-Event-Type", event.EventType)
	msg.Header.Set("Syndicate-Partition-Key", event.PartitionKey)
	return msg, nil
}
