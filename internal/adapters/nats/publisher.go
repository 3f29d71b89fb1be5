package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      "FLOORPLAN_EVENTS",
			Subjects:  []string{EventsSubjectAll},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "FLOORPLAN_IMPORTS",
			Subjects:  []string{"floorplan.import.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishRoomEvent publishes on floorplan.events.<apartment_id>.
func (p *Publisher) PublishRoomEvent(ctx context.Context, event *domain.RoomEvent) error {
	data, err := EncodeRoomEvent(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(EventsSubjectPrefix+event.ApartmentID, data, nats.Context(ctx))
	return err
}

// PublishImportRequest queues a prompt for the import worker.
func (p *Publisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	data, err := EncodeImportRequest(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ImportSubject, data, nats.Context(ctx), nats.MsgId(req.RequestID))
	return err
}

// IsConnected reports the connection state.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
