package layout_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
)

func ring(pts ...float64) domain.Ring {
	r := make(domain.Ring, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		r = append(r, domain.Point{X: pts[i], Y: pts[i+1]})
	}
	return r
}

func TestParseLayout_SingleRoom(t *testing.T) {
	rooms, err := layout.ParseLayout("bedroom: (209,172)(150,172)(150,143)(209,143)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}
	if rooms[0].Type != "bedroom" {
		t.Errorf("expected bedroom, got %q", rooms[0].Type)
	}

	want := domain.MultiPolygon{{Outer: ring(209, 172, 150, 172, 150, 143, 209, 143, 209, 172)}}
	if !rooms[0].Shape.Equal(want) {
		t.Errorf("unexpected shape: %+v", rooms[0].Shape)
	}
}

func TestParseLayout_TwoRoomsInOrder(t *testing.T) {
	rooms, err := layout.ParseLayout("bedroom: (209,172)(150,172)(150,143)(209,143), living_room: (135,128)(47,128)(47,40)(135,40)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if rooms[0].Type != "bedroom" || rooms[1].Type != "living_room" {
		t.Errorf("unexpected order: %q, %q", rooms[0].Type, rooms[1].Type)
	}
	for _, r := range rooms {
		if len(r.Shape) != 1 {
			t.Fatalf("%s: expected 1 polygon, got %d", r.Type, len(r.Shape))
		}
		if n := len(r.Shape[0].Outer); n != 5 {
			t.Errorf("%s: expected 5 points, got %d", r.Type, n)
		}
	}
	if got := rooms[1].Shape[0].Outer[1]; got != (domain.Point{X: 47, Y: 128}) {
		t.Errorf("unexpected second point: %+v", got)
	}
}

func TestParseLayout_Empty(t *testing.T) {
	rooms, err := layout.ParseLayout("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("expected no rooms, got %d", len(rooms))
	}
}

func TestParseLayout_RingClosure(t *testing.T) {
	for n := 1; n <= 8; n++ {
		var b strings.Builder
		b.WriteString("room: ")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "(%d,%d)", i*3, i*7+1)
		}

		rooms, err := layout.ParseLayout(b.String())
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		r := rooms[0].Shape[0].Outer
		if len(r) != n+1 {
			t.Errorf("n=%d: expected %d points, got %d", n, n+1, len(r))
		}
		if r[0] != r[len(r)-1] {
			t.Errorf("n=%d: ring not closed: %+v", n, r)
		}
	}
}

func TestParseLayout_AlreadyClosedInputStillAppends(t *testing.T) {
	rooms, err := layout.ParseLayout("hall: (0,0)(4,0)(4,4)(0,0)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(rooms[0].Shape[0].Outer); n != 5 {
		t.Errorf("expected 5 points, got %d", n)
	}
}

func TestParseLayout_DuplicateTypesKept(t *testing.T) {
	rooms, err := layout.ParseLayout("bedroom: (0,0)(1,0)(1,1), bedroom: (5,5)(6,5)(6,6), bedroom: (9,9)(10,9)(10,10)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	for _, r := range rooms {
		if r.Type != "bedroom" {
			t.Errorf("expected bedroom, got %q", r.Type)
		}
	}
}

func TestParseLayout_FloatsAndNegatives(t *testing.T) {
	rooms, err := layout.ParseLayout("balcony: (-1.5,2.25)(1e2,0)(3,-4)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ring(-1.5, 2.25, 100, 0, 3, -4, -1.5, 2.25)
	if !rooms[0].Shape.Equal(domain.MultiPolygon{{Outer: want}}) {
		t.Errorf("unexpected ring: %+v", rooms[0].Shape[0].Outer)
	}
}

func TestParseLayout_TypeKeptVerbatim(t *testing.T) {
	rooms, err := layout.ParseLayout("master bedroom: (0,0)(1,1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms[0].Type != "master bedroom" {
		t.Errorf("expected %q, got %q", "master bedroom", rooms[0].Type)
	}
}

func TestParseLayout_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  layout.ErrorKind
	}{
		{"missing type separator", "bedroom (209,172)(150,172)", layout.MalformedRoomEntry},
		{"colon without space", "bedroom:(1,2)(3,4)", layout.MalformedRoomEntry},
		{"second entry bad", "a: (1,2), b (3,4)", layout.MalformedRoomEntry},
		{"empty coordinate list", "bedroom: ", layout.MalformedCoordinateList},
		{"empty parens", "bedroom: ()", layout.MalformedCoordinateList},
		{"three numbers", "bedroom: (1,2,3)(4,5)", layout.MalformedCoordinate},
		{"one number", "bedroom: (1)(4,5)", layout.MalformedCoordinate},
		{"semicolon", "bedroom: (1;2)", layout.MalformedCoordinate},
		{"empty pair", "bedroom: (1,2)()", layout.MalformedCoordinate},
		{"letters", "bedroom: (1,x)(2,3)", layout.InvalidNumber},
		{"empty number", "bedroom: (,2)", layout.InvalidNumber},
		{"nan", "bedroom: (NaN,2)", layout.InvalidNumber},
		{"inf", "bedroom: (1,Inf)", layout.InvalidNumber},
		{"hex float", "bedroom: (0x1p4,2)", layout.InvalidNumber},
		{"signed hex float", "bedroom: (1,-0X1_0p0)", layout.InvalidNumber},
		{"underscore", "bedroom: (1_0,2)", layout.InvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms, err := layout.ParseLayout(tt.input)
			if err == nil {
				t.Fatalf("expected error, got rooms %+v", rooms)
			}
			if rooms != nil {
				t.Errorf("expected no partial result, got %+v", rooms)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestParseLayout_InvalidNumberCarriesInput(t *testing.T) {
	_, err := layout.ParseLayout("a: (0,0), b: (1,2)(3,abc)")

	var pe *layout.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != layout.InvalidNumber {
		t.Errorf("expected InvalidNumber, got %v", pe.Kind)
	}
	if pe.Input != "abc" {
		t.Errorf("expected input abc, got %q", pe.Input)
	}
	if pe.Entry != 1 {
		t.Errorf("expected entry 1, got %d", pe.Entry)
	}
	if pe.Err == nil {
		t.Error("expected underlying cause")
	}
}

func TestParseLayout_DelimiterSensitivity(t *testing.T) {
	for _, pair := range []string{"1", "1,2,3", "1,,2", ",,", "12"} {
		_, err := layout.ParseLayout("r: (" + pair + ")")
		if !errors.Is(err, layout.MalformedCoordinate) {
			t.Errorf("pair %q: expected MalformedCoordinate, got %v", pair, err)
		}
	}
}

func TestParsePrompt(t *testing.T) {
	desc, rooms, err := layout.ParsePrompt("a bathroom is located in the west side of the house [Layout] bathroom: (201,194)(172,194)(172,165)(187,165)(187,150)(201,150)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "a bathroom is located in the west side of the house" {
		t.Errorf("unexpected description: %q", desc)
	}
	if len(rooms) != 1 || rooms[0].Type != "bathroom" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
	if n := len(rooms[0].Shape[0].Outer); n != 7 {
		t.Errorf("expected 7 points, got %d", n)
	}
}

func TestParsePrompt_EmptyBody(t *testing.T) {
	desc, rooms, err := layout.ParsePrompt("  just words [Layout]   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "just words" {
		t.Errorf("unexpected description: %q", desc)
	}
	if len(rooms) != 0 {
		t.Errorf("expected no rooms, got %d", len(rooms))
	}
}

func TestParsePrompt_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  layout.ErrorKind
	}{
		{"missing marker", "a house bedroom: (1,2)", layout.MissingLayoutMarker},
		{"two markers", "a [Layout] b [Layout] bedroom: (1,2)", layout.MultipleLayoutMarkers},
		{"layout error propagates", "desc [Layout] bedroom (1,2)", layout.MalformedRoomEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := layout.ParsePrompt(tt.input)
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestParseLayout_Concurrent(t *testing.T) {
	const input = "bedroom: (209,172)(150,172)(150,143)(209,143), living_room: (135,128)(47,128)(47,40)(135,40)"

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms, err := layout.ParseLayout(input)
			if err != nil || len(rooms) != 2 {
				t.Errorf("unexpected result: %v, %d rooms", err, len(rooms))
			}
		}()
	}
	wg.Wait()
}

func TestErrorKind_Code(t *testing.T) {
	if got := layout.InvalidNumber.Code(); got != "invalid_number" {
		t.Errorf("expected invalid_number, got %s", got)
	}
	if got := layout.ErrorKind(0).Code(); got != "unknown" {
		t.Errorf("expected unknown for zero kind, got %s", got)
	}
	if got := layout.ErrorKind(99).Error(); got != "unknown layout error" {
		t.Errorf("unexpected message %q", got)
	}
}
