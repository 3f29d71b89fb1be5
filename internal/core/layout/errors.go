package layout

import "fmt"

// ErrorKind classifies a malformed layout. ErrorKind values are errors
// themselves, so callers can match with errors.Is(err, layout.InvalidNumber).
type ErrorKind uint

const (
	MalformedRoomEntry ErrorKind = iota + 1
	MalformedCoordinateList
	MalformedCoordinate
	InvalidNumber
	MissingLayoutMarker
	MultipleLayoutMarkers
)

var kindReasons = [...]string{
	MalformedRoomEntry:      "malformed room entry",
	MalformedCoordinateList: "malformed coordinate list",
	MalformedCoordinate:     "malformed coordinate",
	InvalidNumber:           "invalid number",
	MissingLayoutMarker:     "missing " + Marker + " marker",
	MultipleLayoutMarkers:   "multiple " + Marker + " markers",
}

var kindCodes = [...]string{
	MalformedRoomEntry:      "malformed_room_entry",
	MalformedCoordinateList: "malformed_coordinate_list",
	MalformedCoordinate:     "malformed_coordinate",
	InvalidNumber:           "invalid_number",
	MissingLayoutMarker:     "missing_layout_marker",
	MultipleLayoutMarkers:   "multiple_layout_markers",
}

// Code returns a stable snake_case identifier for API responses.
func (k ErrorKind) Code() string {
	if k == 0 || int(k) >= len(kindCodes) {
		return "unknown"
	}
	return kindCodes[k]
}

func (k ErrorKind) Error() string {
	if k == 0 || int(k) >= len(kindReasons) {
		return "unknown layout error"
	}
	return kindReasons[k]
}

// ParseError describes where and why a layout failed to parse.
type ParseError struct {
	Kind ErrorKind
	// Entry is the zero-based room entry index, or -1 for prompt-level errors.
	Entry int
	// Input is the offending fragment: the room entry, coordinate pair or number.
	Input string
	// Err is the underlying cause, if any (e.g. a *strconv.NumError).
	Err error
}

func (e *ParseError) Error() string {
	if e.Entry < 0 {
		return "layout: " + e.Kind.Error()
	}
	return fmt.Sprintf("layout: room %d: %s %q", e.Entry, e.Kind.Error(), e.Input)
}

// Is matches the error against its kind.
func (e *ParseError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *ParseError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, entry int, input string) *ParseError {
	return &ParseError{Kind: kind, Entry: entry, Input: input}
}
