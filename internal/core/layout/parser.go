// Package layout converts textual floor-plan descriptions into room geometry.
//
// A layout is a ", "-separated list of room entries:
//
//	bedroom: (209,172)(150,172)(150,143)(209,143), living_room: (135,128)(47,128)(47,40)(135,40)
//
// Each entry yields one room whose shape is a single-polygon MultiPolygon with
// a closed outer ring. A prompt prefixes the layout with a free-text
// description separated by the [Layout] marker.
//
// All functions are pure and safe for concurrent use.
package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

const (
	// Marker separates the description from the layout body in a prompt.
	Marker = "[Layout]"

	roomSep  = ", "
	typeSep  = ": "
	pairSep  = ")("
	coordSep = ","
)

// ParseLayout parses a layout into rooms, in input order. Duplicate room types
// are kept. An empty layout yields no rooms and no error.
func ParseLayout(text string) ([]domain.Room, error) {
	if text == "" {
		return nil, nil
	}

	entries := strings.Split(text, roomSep)
	rooms := make([]domain.Room, 0, len(entries))
	for i, entry := range entries {
		room, err := parseRoom(i, entry)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// ParsePrompt splits a prompt around its single [Layout] marker and parses the
// layout body. Both halves are whitespace-trimmed.
func ParsePrompt(text string) (string, []domain.Room, error) {
	switch strings.Count(text, Marker) {
	case 0:
		return "", nil, newError(MissingLayoutMarker, -1, text)
	case 1:
	default:
		return "", nil, newError(MultipleLayoutMarkers, -1, text)
	}

	description, body, _ := strings.Cut(text, Marker)
	rooms, err := ParseLayout(strings.TrimSpace(body))
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(description), rooms, nil
}

func parseRoom(index int, entry string) (domain.Room, error) {
	roomType, coords, ok := strings.Cut(entry, typeSep)
	if !ok {
		return domain.Room{}, newError(MalformedRoomEntry, index, entry)
	}

	ring, err := parseRing(index, coords)
	if err != nil {
		return domain.Room{}, err
	}

	return domain.Room{
		Type:  roomType,
		Shape: domain.MultiPolygon{{Outer: ring}},
	}, nil
}

// parseRing reads "(x1,y1)(x2,y2)..." and closes the ring by repeating the
// first point, whether or not the input already ends on it.
func parseRing(index int, coords string) (domain.Ring, error) {
	trimmed := strings.TrimPrefix(coords, "(")
	trimmed = strings.TrimSuffix(trimmed, ")")
	if trimmed == "" {
		return nil, newError(MalformedCoordinateList, index, coords)
	}

	pairs := strings.Split(trimmed, pairSep)
	ring := make(domain.Ring, 0, len(pairs)+1)
	for _, pair := range pairs {
		p, err := parsePoint(index, pair)
		if err != nil {
			return nil, err
		}
		ring = append(ring, p)
	}
	return append(ring, ring[0]), nil
}

func parsePoint(index int, pair string) (domain.Point, error) {
	parts := strings.Split(pair, coordSep)
	if len(parts) != 2 {
		return domain.Point{}, newError(MalformedCoordinate, index, pair)
	}

	x, err := parseNumber(index, parts[0])
	if err != nil {
		return domain.Point{}, err
	}
	y, err := parseNumber(index, parts[1])
	if err != nil {
		return domain.Point{}, err
	}
	return domain.Point{X: x, Y: y}, nil
}

// parseNumber accepts surrounding blanks and decimal literals only: NaN,
// infinities and hexadecimal floats are rejected.
func parseNumber(index int, s string) (float64, error) {
	lit := strings.TrimSpace(s)
	v, err := strconv.ParseFloat(lit, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0) || isHex(lit)) {
		err = strconv.ErrSyntax
	}
	if err != nil {
		pe := newError(InvalidNumber, index, s)
		pe.Err = err
		return 0, pe
	}
	return v, nil
}

func isHex(lit string) bool {
	lit = strings.TrimLeft(lit, "+-")
	return strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X")
}
