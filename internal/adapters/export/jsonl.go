// Package export renders apartments for consumers outside the service:
// conversation records for model training and GeoJSON for map tooling.
package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
)

// Turn is one message of a conversation record.
type Turn struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// Record is one JSONL line.
type Record struct {
	Conversations []Turn `json:"conversations"`
}

// Conversations writes a human/gpt pair per apartment: the description asks,
// the formatted layout answers.
type Conversations struct {
	HumanRole string
	GPTRole   string
}

// NewConversations returns an exporter using the given role names.
func NewConversations(humanRole, gptRole string) *Conversations {
	return &Conversations{HumanRole: humanRole, GPTRole: gptRole}
}

// Write emits exactly one line.
func (c *Conversations) Write(ctx context.Context, w io.Writer, description string, rooms []domain.Room) error {
	rec := Record{Conversations: []Turn{
		{From: c.HumanRole, Value: description},
		{From: c.GPTRole, Value: layout.Format(rooms)},
	}}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}
