package repository

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

const roomColumns = `id, hotel_id, number, category, status, max_guests, features, base_rate, created_at, updated_at`

func scanRoom(row interface{ Scan(dest ...any) error }) (*model.Room, error) {
	var r model.Room
	if err := row.Scan(
		&r.ID, &r.HotelID, &r.Number, &r.Category, &r.Status,
		&r.MaxGuests, &r.Features, &r.BaseRate, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoom returns a room of the hotel or sql.ErrNoRows.
func (s *Store) GetRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND hotel_id = ?`
	return scanRoom(s.q.QueryRowContext(ctx, q, roomID, hotelID))
}

// LockRoom is GetRoom with a row lock held until the transaction ends.
func (s *Store) LockRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error) {
	q := s.forUpdate(`SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND hotel_id = ?`)
	return scanRoom(s.q.QueryRowContext(ctx, q, roomID, hotelID))
}

// ListEquivalentRooms returns the candidate pool for moving guests off
// source: same category and max guests, not blocked, identical features
// when source has any.  Ordered by room number as text; the planner
// re-sorts numerically.
func (s *Store) ListEquivalentRooms(ctx context.Context, hotelID uint64, source model.Room) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms
	      WHERE hotel_id = ? AND id <> ? AND category = ? AND max_guests = ?
	        AND status NOT IN ` + blockedRoomStatuses
	args := []any{hotelID, source.ID, source.Category, source.MaxGuests}
	if source.Features != "" {
		q += ` AND features = ?`
		args = append(args, source.Features)
	}
	q = s.forUpdate(q + ` ORDER BY number, id`)

	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CountActiveRooms counts the rooms of a category that can take guests.
func (s *Store) CountActiveRooms(ctx context.Context, hotelID uint64, category model.RoomCategory) (int, error) {
	const q = `SELECT COUNT(*) FROM rooms WHERE hotel_id = ? AND category = ? AND status NOT IN ` + blockedRoomStatuses
	var n int
	if err := s.q.QueryRowContext(ctx, q, hotelID, category).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateRoomStatus writes a room's status.  A missing room yields
// sql.ErrNoRows.
func (s *Store) UpdateRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ? WHERE id = ? AND hotel_id = ?`
	res, err := s.q.ExecContext(ctx, q, status, roomID, hotelID)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows when the value is unchanged, so only
	// a confirmed miss is treated as not found.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		return s.q.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ? AND hotel_id = ?`, roomID, hotelID).Scan(&one)
	}
	return nil
}
