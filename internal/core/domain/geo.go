package domain

// Point is a planar coordinate in floor-plan units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring is an ordered, closed boundary: the last point always equals the first.
type Ring []Point

// Closed reports whether r ends where it starts.
func (r Ring) Closed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Vertices returns the ring without its closing point.
func (r Ring) Vertices() []Point {
	if !r.Closed() {
		return r
	}
	return r[:len(r)-1]
}

// Polygon has exactly one outer ring; holes are never produced.
type Polygon struct {
	Outer Ring `json:"outer"`
}

// MultiPolygon is an ordered collection of polygons.
type MultiPolygon []Polygon

// Equal reports exact coordinate equality.
func (m MultiPolygon) Equal(o MultiPolygon) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		a, b := m[i].Outer, o[i].Outer
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a copy that shares no backing arrays with m.
func (m MultiPolygon) Clone() MultiPolygon {
	if m == nil {
		return nil
	}
	out := make(MultiPolygon, len(m))
	for i, p := range m {
		out[i].Outer = append(Ring(nil), p.Outer...)
	}
	return out
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Overlaps reports whether two boxes share at least one point.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX &&
		b.MinY <= o.MaxY && o.MinY <= b.MaxY
}
