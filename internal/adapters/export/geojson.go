package export

import (
	"context"
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
)

// GeoJSON writes one FeatureCollection per apartment, one MultiPolygon
// feature per room.
type GeoJSON struct{}

// Collection builds the feature collection for a set of rooms.
func Collection(rooms []domain.Room) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rooms {
		f := geojson.NewMultiPolygonFeature(toCoords(r.Shape)...)
		if r.ID != "" {
			f.ID = r.ID
		}
		f.SetProperty("room_type", r.Type)
		f.SetProperty("area", geospatial.Area(r.Shape))
		fc.AddFeature(f)
	}
	return fc
}

// Write emits the collection followed by a newline. The description is not
// part of the output.
func (GeoJSON) Write(ctx context.Context, w io.Writer, description string, rooms []domain.Room) error {
	data, err := Collection(rooms).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// RoomsFromGeoJSON reads rooms back from a feature collection. Features
// without a room_type property or a polygonal geometry are rejected.
func RoomsFromGeoJSON(data []byte) ([]domain.Room, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	rooms := make([]domain.Room, 0, len(fc.Features))
	for i, f := range fc.Features {
		typ, err := f.PropertyString("room_type")
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d: missing geometry", i)
		}

		var polys [][][][]float64
		switch {
		case f.Geometry.IsMultiPolygon():
			polys = f.Geometry.MultiPolygon
		case f.Geometry.IsPolygon():
			polys = [][][][]float64{f.Geometry.Polygon}
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %s", i, f.Geometry.Type)
		}
		rooms = append(rooms, domain.Room{Type: typ, Shape: fromCoords(polys)})
	}
	return rooms, nil
}

func toCoords(m domain.MultiPolygon) [][][][]float64 {
	out := make([][][][]float64, len(m))
	for i, p := range m {
		ring := make([][]float64, len(p.Outer))
		for j, pt := range p.Outer {
			ring[j] = []float64{pt.X, pt.Y}
		}
		out[i] = [][][]float64{ring}
	}
	return out
}

func fromCoords(polys [][][][]float64) domain.MultiPolygon {
	m := make(domain.MultiPolygon, 0, len(polys))
	for _, rings := range polys {
		if len(rings) == 0 {
			continue
		}
		outer := make(domain.Ring, 0, len(rings[0]))
		for _, c := range rings[0] {
			if len(c) < 2 {
				continue
			}
			outer = append(outer, domain.Point{X: c[0], Y: c[1]})
		}
		m = append(m, domain.Polygon{Outer: outer})
	}
	return m
}
