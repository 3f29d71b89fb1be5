package geospatial

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

var (
	// ErrShortRing is returned for rings a spatial store cannot hold as a polygon.
	ErrShortRing = errors.New("polygon must have at least four points in each ring")
	// ErrOpenRing is returned for rings whose last point differs from the first.
	ErrOpenRing = errors.New("geometry contains non-closed rings")
	// ErrEmptyShape is returned for shapes without polygons.
	ErrEmptyShape = errors.New("shape must have at least one polygon")
)

// ToGeom converts a shape to a go-geom XY multipolygon.
func ToGeom(m domain.MultiPolygon) *geom.MultiPolygon {
	coords := make([][][]geom.Coord, len(m))
	for i, p := range m {
		ring := make([]geom.Coord, len(p.Outer))
		for j, pt := range p.Outer {
			ring[j] = geom.Coord{pt.X, pt.Y}
		}
		coords[i] = [][]geom.Coord{ring}
	}
	return geom.NewMultiPolygon(geom.XY).MustSetCoords(coords)
}

// FromGeom converts a go-geom geometry back to a shape. Only outer rings are kept.
func FromGeom(g geom.T) (domain.MultiPolygon, error) {
	var polys [][][]geom.Coord
	switch t := g.(type) {
	case *geom.MultiPolygon:
		polys = t.Coords()
	case *geom.Polygon:
		polys = [][][]geom.Coord{t.Coords()}
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}

	m := make(domain.MultiPolygon, 0, len(polys))
	for _, rings := range polys {
		if len(rings) == 0 {
			continue
		}
		outer := make(domain.Ring, len(rings[0]))
		for i, c := range rings[0] {
			outer[i] = domain.Point{X: c.X(), Y: c.Y()}
		}
		m = append(m, domain.Polygon{Outer: outer})
	}
	return m, nil
}

// Validate checks that a shape can be stored as a valid multipolygon: at least
// one polygon, each ring closed and holding four or more points.
func Validate(m domain.MultiPolygon) error {
	g := ToGeom(m)
	if g.NumPolygons() == 0 {
		return ErrEmptyShape
	}
	for i := 0; i < g.NumPolygons(); i++ {
		p := g.Polygon(i)
		for j := 0; j < p.NumLinearRings(); j++ {
			if err := validateLinearRing(p.LinearRing(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateLinearRing(r *geom.LinearRing) error {
	if r.NumCoords() < 4 {
		return ErrShortRing
	}
	first, last := r.Coord(0), r.Coord(r.NumCoords()-1)
	for i := range first {
		if first[i] != last[i] {
			return ErrOpenRing
		}
	}
	return nil
}

// MarshalWKT renders a shape as WKT for ST_GeomFromText.
func MarshalWKT(m domain.MultiPolygon) (string, error) {
	return wkt.Marshal(ToGeom(m))
}

// UnmarshalWKB decodes the output of ST_AsBinary.
func UnmarshalWKB(data []byte) (domain.MultiPolygon, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}
	return FromGeom(g)
}
