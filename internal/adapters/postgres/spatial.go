package postgres

import (
	"context"
	"fmt"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
)

// Spatial implements ports.SpatialPredicate with PostGIS.
type Spatial struct {
	db *DB
}

func NewSpatial(db *DB) *Spatial {
	return &Spatial{db: db}
}

// Intersects reports ST_Intersects(a, b).
func (s *Spatial) Intersects(ctx context.Context, a, b domain.MultiPolygon) (bool, error) {
	wa, err := geospatial.MarshalWKT(a)
	if err != nil {
		return false, fmt.Errorf("encode shape: %w", err)
	}
	wb, err := geospatial.MarshalWKT(b)
	if err != nil {
		return false, fmt.Errorf("encode shape: %w", err)
	}

	var hit bool
	err = s.db.Pool.QueryRow(ctx,
		`SELECT ST_Intersects(ST_GeomFromText($1), ST_GeomFromText($2))`, wa, wb,
	).Scan(&hit)
	return hit, err
}
