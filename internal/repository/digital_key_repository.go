package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RepointDigitalKeys moves every key of a reservation to roomID (which may
// be nil) and reports how many keys changed.
func (s *Store) RepointDigitalKeys(ctx context.Context, hotelID, reservationID uint64, roomID *uint64) (int64, error) {
	const q = `UPDATE digital_keys SET room_id = ? WHERE hotel_id = ? AND reservation_id = ?`
	res, err := s.q.ExecContext(ctx, q, nullableID(roomID), hotelID, reservationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DigitalKeyRepo stores issued digital keys.  Only the hash of a key code
// is ever written.
type DigitalKeyRepo struct {
	db *sql.DB
}

// NewDigitalKeyRepo returns a DigitalKeyRepo bound to db.
func NewDigitalKeyRepo(db *sql.DB) *DigitalKeyRepo { return &DigitalKeyRepo{db: db} }

// ExistsForReservation reports whether the reservation already has a key.
func (r *DigitalKeyRepo) ExistsForReservation(ctx context.Context, hotelID, reservationID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM digital_keys WHERE hotel_id = ? AND reservation_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, hotelID, reservationID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a key and fills its id.  A unique key violation is
// reported as ErrDuplicate.
func (r *DigitalKeyRepo) Create(ctx context.Context, k *model.DigitalKey) error {
	const q = `INSERT INTO digital_keys (hotel_id, reservation_id, room_id, code_hash, issued_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, k.HotelID, k.ReservationID, nullableID(k.RoomID), k.CodeHash, k.IssuedAt)
	if err != nil {
		if database.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	k.ID = uint64(id)
	return nil
}
