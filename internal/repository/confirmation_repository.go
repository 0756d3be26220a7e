package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Confirmation outbox statuses.
const (
	ConfirmationQueued    = "QUEUED"
	ConfirmationPublished = "PUBLISHED"
)

// ConfirmationRepo is the guest_confirmations outbox.  The table holds at
// most one row per reservation and confirmation type.
type ConfirmationRepo struct {
	db *sql.DB
}

// NewConfirmationRepo returns a ConfirmationRepo bound to db.
func NewConfirmationRepo(db *sql.DB) *ConfirmationRepo { return &ConfirmationRepo{db: db} }

// Exists reports whether a confirmation of the given type was already
// queued for the reservation.
func (r *ConfirmationRepo) Exists(ctx context.Context, hotelID, reservationID uint64, typ model.ConfirmationType) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM guest_confirmations WHERE hotel_id = ? AND reservation_id = ? AND type = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, hotelID, reservationID, typ).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts an outbox row.  A concurrent insert for the same
// reservation and type surfaces as ErrDuplicate.
func (r *ConfirmationRepo) Create(ctx context.Context, c *model.GuestConfirmation) error {
	const q = `INSERT INTO guest_confirmations (hotel_id, reservation_id, type, message_id, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.HotelID, c.ReservationID, c.Type, c.MessageID, c.Status)
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
	c.ID = uint64(id)
	return nil
}

// MarkPublished flags the outbox row once the broker accepted the message.
func (r *ConfirmationRepo) MarkPublished(ctx context.Context, messageID string) error {
	const q = `UPDATE guest_confirmations SET status = ? WHERE message_id = ?`
	_, err := r.db.ExecContext(ctx, q, ConfirmationPublished, messageID)
	return err
}

// ListQueued returns up to limit rows still QUEUED that were created before
// the cutoff, oldest first.
func (r *ConfirmationRepo) ListQueued(ctx context.Context, before time.Time, limit int) ([]model.GuestConfirmation, error) {
	const q = `SELECT id, hotel_id, reservation_id, type, message_id, status, created_at
	             FROM guest_confirmations
	            WHERE status = ? AND created_at < ?
	            ORDER BY created_at, id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, ConfirmationQueued, before.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GuestConfirmation
	for rows.Next() {
		var c model.GuestConfirmation
		if err := rows.Scan(&c.ID, &c.HotelID, &c.ReservationID, &c.Type, &c.MessageID, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
