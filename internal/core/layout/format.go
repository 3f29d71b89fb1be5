package layout

import (
	"strconv"
	"strings"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// Format renders rooms back into layout text. The synthetic closing point of
// each ring is dropped, so ParseLayout(Format(rooms)) reproduces the shapes.
// Only the first polygon of each room is written.
func Format(rooms []domain.Room) string {
	entries := make([]string, 0, len(rooms))
	for _, r := range rooms {
		entries = append(entries, FormatRoom(r))
	}
	return strings.Join(entries, roomSep)
}

// FormatRoom renders a single "type: (x,y)(x,y)..." entry.
func FormatRoom(r domain.Room) string {
	var b strings.Builder
	b.WriteString(r.Type)
	b.WriteString(typeSep)
	if len(r.Shape) > 0 {
		for _, p := range r.Shape[0].Outer.Vertices() {
			b.WriteByte('(')
			b.WriteString(formatNumber(p.X))
			b.WriteString(coordSep)
			b.WriteString(formatNumber(p.Y))
			b.WriteByte(')')
		}
	}
	return b.String()
}

// FormatPrompt renders "<description> [Layout] <layout>".
func FormatPrompt(description string, rooms []domain.Room) string {
	return strings.TrimSpace(description+" "+Marker) + " " + Format(rooms)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
