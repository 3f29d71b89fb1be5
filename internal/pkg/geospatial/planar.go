package geospatial

import (
	"context"
	"math"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// Planar implements ports.SpatialPredicate in process, without a spatial database.
type Planar struct{}

// Intersects reports whether a and b share at least one point.
func (Planar) Intersects(_ context.Context, a, b domain.MultiPolygon) (bool, error) {
	return Intersects(a, b), nil
}

// Intersects reports whether two shapes share at least one point. Boundaries
// count, so rooms touching along a wall intersect, as with PostGIS ST_Intersects.
func Intersects(a, b domain.MultiPolygon) bool {
	for _, pa := range a {
		for _, pb := range b {
			if polygonsIntersect(pa.Outer, pb.Outer) {
				return true
			}
		}
	}
	return false
}

func polygonsIntersect(a, b domain.Ring) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !ringBounds(a).Overlaps(ringBounds(b)) {
		return false
	}

	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}

	// No edge crossings: either disjoint or one ring contains the other.
	return containsPoint(b, a[0]) || containsPoint(a, b[0])
}

// containsPoint is an even-odd ray cast; points on the boundary count as inside.
func containsPoint(r domain.Ring, p domain.Point) bool {
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if orientation(a, b, p) == 0 && onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

func segmentsIntersect(a, b, c, d domain.Point) bool {
	d1 := orientation(c, d, a)
	d2 := orientation(c, d, b)
	d3 := orientation(a, b, c)
	d4 := orientation(a, b, d)

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	switch {
	case d1 == 0 && onSegment(c, d, a):
		return true
	case d2 == 0 && onSegment(c, d, b):
		return true
	case d3 == 0 && onSegment(a, b, c):
		return true
	case d4 == 0 && onSegment(a, b, d):
		return true
	}
	return false
}

// orientation returns -1, 0 or 1 for clockwise, collinear, counter-clockwise.
func orientation(p, q, r domain.Point) int {
	v := (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment assumes p, q, r are collinear.
func onSegment(p, q, r domain.Point) bool {
	return math.Min(p.X, q.X) <= r.X && r.X <= math.Max(p.X, q.X) &&
		math.Min(p.Y, q.Y) <= r.Y && r.Y <= math.Max(p.Y, q.Y)
}

// Area returns the total unsigned area of a shape (shoelace formula).
func Area(m domain.MultiPolygon) float64 {
	var total float64
	for _, p := range m {
		var s float64
		r := p.Outer
		for i := 0; i+1 < len(r); i++ {
			s += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
		}
		total += math.Abs(s) / 2
	}
	return total
}

// BoundsOf returns the bounding box of a shape. An empty shape yields the zero box.
func BoundsOf(m domain.MultiPolygon) domain.Bounds {
	var b domain.Bounds
	first := true
	for _, p := range m {
		if len(p.Outer) == 0 {
			continue
		}
		rb := ringBounds(p.Outer)
		if first {
			b, first = rb, false
			continue
		}
		b.MinX = math.Min(b.MinX, rb.MinX)
		b.MinY = math.Min(b.MinY, rb.MinY)
		b.MaxX = math.Max(b.MaxX, rb.MaxX)
		b.MaxY = math.Max(b.MaxY, rb.MaxY)
	}
	return b
}

func ringBounds(r domain.Ring) domain.Bounds {
	b := domain.Bounds{MinX: r[0].X, MinY: r[0].Y, MaxX: r[0].X, MaxY: r[0].Y}
	for _, p := range r[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}
