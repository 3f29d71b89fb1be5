package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/floorplan/internal/adapters/nats"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to apartments.
type wsMessage struct {
	Action    string `json:"action"`    // "subscribe" | "unsubscribe"
	Apartment string `json:"apartment"` // apartment ID ("" = all)
}

func eventSubject(apartmentID string) string {
	if apartmentID == "" {
		return natsadapter.EventsSubjectAll
	}
	return natsadapter.EventsSubjectPrefix + apartmentID
}

// WebSocketHandler returns a handler that relays room events from NATS to
// connected clients as JSON.
// Clients send: {"action":"subscribe","apartment":"<id>"}. Without any
// message, a client receives events for all apartments.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			data, err := natsadapter.EventJSON(msg.Data)
			if err != nil {
				slog.Warn("ws relay: undecodable event", "subject", msg.Subject, "error", err)
				return
			}
			_ = writeJSON(json.RawMessage(data))
		}

		subscribe := func(subject string) error {
			s, err := nc.Subscribe(subject, relay)
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		if err := subscribe(natsadapter.EventsSubjectAll); err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := eventSubject(m.Apartment)

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				// A specific apartment replaces the catch-all subscription.
				if m.Apartment != "" {
					if all, ok := subs[natsadapter.EventsSubjectAll]; ok {
						_ = all.Unsubscribe()
						delete(subs, natsadapter.EventsSubjectAll)
					}
				}
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
