package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// ErrPermanent marks handler errors that must not be redelivered.
var ErrPermanent = errors.New("permanent failure")

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeImportRequests delivers queued prompts to handler. Undecodable
// messages and handler errors wrapping ErrPermanent are terminated; other
// errors are redelivered up to three times.
func (s *Subscriber) SubscribeImportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ImportRequest) error) error {
	sub, err := s.js.Subscribe(ImportSubject, func(msg *nats.Msg) {
		req, err := DecodeImportRequest(msg.Data)
		if err != nil {
			slog.Warn("dropping undecodable import request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, req); err != nil {
			if errors.Is(err, ErrPermanent) {
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("import-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
