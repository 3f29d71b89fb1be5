package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/ports"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
)

// RoomRepo implements ports.RoomRepository with pgx and PostGIS.
type RoomRepo struct {
	db *DB
}

// NewRoomRepo creates a new RoomRepo.
func NewRoomRepo(db *DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const insertRoomSQL = `
	INSERT INTO rooms (apartment_id, room_type, shape)
	VALUES ($1, $2, ST_Multi(ST_GeomFromText($3)))
	RETURNING id, created_at
`

// InsertChecked locks the apartment row for the length of one transaction,
// so inserts into the same apartment queue behind each other while inserts
// into other apartments proceed. A deleted apartment yields domain.ErrNotFound.
func (r *RoomRepo) InsertChecked(ctx context.Context, apartmentID string, room *domain.Room, check ports.RoomCheck) error {
	if !validID(apartmentID) {
		return domain.ErrNotFound
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM apartments WHERE id = $1 FOR UPDATE`, apartmentID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock apartment: %w", err)
	}

	existing, err := listRooms(ctx, tx, apartmentID)
	if err != nil {
		return err
	}
	if err := check(ctx, existing); err != nil {
		return err
	}
	if err := insertRoom(ctx, tx, apartmentID, room); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// insertRoom sends the shape as WKT.
func insertRoom(ctx context.Context, q querier, apartmentID string, room *domain.Room) error {
	shape, err := geospatial.MarshalWKT(room.Shape)
	if err != nil {
		return fmt.Errorf("encode shape: %w", err)
	}
	err = q.QueryRow(ctx, insertRoomSQL, apartmentID, room.Type, shape).Scan(&room.ID, &room.CreatedAt)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	room.ApartmentID = apartmentID
	return nil
}

// InsertBatch stores many rooms of one apartment using pgx.Batch. No overlap
// check is made; callers that need one go through RoomService.
func (r *RoomRepo) InsertBatch(ctx context.Context, apartmentID string, rooms []domain.Room) error {
	batch := &pgx.Batch{}
	for _, room := range rooms {
		shape, err := geospatial.MarshalWKT(room.Shape)
		if err != nil {
			return fmt.Errorf("encode shape %s: %w", room.Type, err)
		}
		batch.Queue(`
			INSERT INTO rooms (apartment_id, room_type, shape)
			VALUES ($1, $2, ST_Multi(ST_GeomFromText($3)))
		`, apartmentID, room.Type, shape)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rooms {
		if _, err := br.Exec(); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// ListByApartment returns rooms in insertion order.
func (r *RoomRepo) ListByApartment(ctx context.Context, apartmentID string) ([]domain.Room, error) {
	if !validID(apartmentID) {
		return nil, nil
	}
	return listRooms(ctx, r.db.Pool, apartmentID)
}

func listRooms(ctx context.Context, q querier, apartmentID string) ([]domain.Room, error) {
	rows, err := q.Query(ctx, `
		SELECT id, apartment_id, room_type, ST_AsBinary(shape), created_at
		FROM rooms
		WHERE apartment_id = $1
		ORDER BY created_at, id
	`, apartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var (
			room domain.Room
			wkb  []byte
		)
		if err := rows.Scan(&room.ID, &room.ApartmentID, &room.Type, &wkb, &room.CreatedAt); err != nil {
			return nil, err
		}
		if room.Shape, err = geospatial.UnmarshalWKB(wkb); err != nil {
			return nil, fmt.Errorf("room %s: %w", room.ID, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// DeleteByApartment removes every room of an apartment.
func (r *RoomRepo) DeleteByApartment(ctx context.Context, apartmentID string) error {
	if !validID(apartmentID) {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM rooms WHERE apartment_id = $1`, apartmentID)
	return err
}
