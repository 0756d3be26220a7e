package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

const reservationColumns = `id, hotel_id, room_id, guest_id, status, room_category, check_in, check_out,
       adults, children, payment_status, created_at, updated_at`

func scanReservation(row interface{ Scan(dest ...any) error }) (*model.Reservation, error) {
	var r model.Reservation
	var roomID sql.NullInt64
	if err := row.Scan(
		&r.ID, &r.HotelID, &roomID, &r.GuestID, &r.Status, &r.RoomCategory, &r.CheckIn, &r.CheckOut,
		&r.Adults, &r.Children, &r.PaymentStatus, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if roomID.Valid {
		id := uint64(roomID.Int64)
		r.RoomID = &id
	}
	r.CheckIn, r.CheckOut = model.Day(r.CheckIn), model.Day(r.CheckOut)
	return &r, nil
}

// dateArg renders a stay boundary for a DATE column.
func dateArg(t time.Time) string { return t.UTC().Format(model.DateLayout) }

// nullableID maps an optional id to a column value.
func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// GetReservation returns a reservation of the hotel or sql.ErrNoRows.
func (s *Store) GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND hotel_id = ?`
	return scanReservation(s.q.QueryRowContext(ctx, q, reservationID, hotelID))
}

// LockReservation is GetReservation with a row lock.
func (s *Store) LockReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error) {
	q := s.forUpdate(`SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? AND hotel_id = ?`)
	return scanReservation(s.q.QueryRowContext(ctx, q, reservationID, hotelID))
}

// ListActiveReservationsForRoom returns the BOOKED and CHECKED_IN stays on
// a room that end after now, earliest check-in first.
func (s *Store) ListActiveReservationsForRoom(ctx context.Context, hotelID, roomID uint64, now time.Time) ([]model.Reservation, error) {
	q := s.forUpdate(`SELECT ` + reservationColumns + ` FROM reservations
	      WHERE hotel_id = ? AND room_id = ? AND status IN ` + blockingStatuses + ` AND check_out > ?
	      ORDER BY check_in, id`)
	rows, err := s.q.QueryContext(ctx, q, hotelID, roomID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// CountRoomOverlaps counts blocking stays on the room that share a night
// with window.  Stays are half-open, so back-to-back stays do not count.
func (s *Store) CountRoomOverlaps(ctx context.Context, hotelID, roomID uint64, window model.DateRange, exclude ...uint64) (int, error) {
	q := `SELECT COUNT(*) FROM reservations
	      WHERE hotel_id = ? AND room_id = ? AND status IN ` + blockingStatuses + `
	        AND check_in < ? AND check_out > ?`
	args := []any{hotelID, roomID, dateArg(window.CheckOut), dateArg(window.CheckIn)}
	q, args = excludeIDs(q, args, exclude)
	var n int
	if err := s.q.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountCategoryOverlaps counts blocking stays of a category overlapping
// window, with or without an assigned room.
func (s *Store) CountCategoryOverlaps(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange, exclude ...uint64) (int, error) {
	q := `SELECT COUNT(*) FROM reservations
	      WHERE hotel_id = ? AND room_category = ? AND status IN ` + blockingStatuses + `
	        AND check_in < ? AND check_out > ?`
	args := []any{hotelID, category, dateArg(window.CheckOut), dateArg(window.CheckIn)}
	q, args = excludeIDs(q, args, exclude)
	var n int
	if err := s.q.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func excludeIDs(q string, args []any, ids []uint64) (string, []any) {
	if len(ids) == 0 {
		return q, args
	}
	q += ` AND id NOT IN (` + placeholders(len(ids)) + `)`
	for _, id := range ids {
		args = append(args, id)
	}
	return q, args
}

// CreateReservation inserts res and fills its id and timestamps.
func (s *Store) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (hotel_id, room_id, guest_id, status, room_category, check_in, check_out, adults, children, payment_status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := s.q.ExecContext(ctx, q,
		res.HotelID, nullableID(res.RoomID), res.GuestID, res.Status, res.RoomCategory,
		dateArg(res.CheckIn), dateArg(res.CheckOut), res.Adults, res.Children, res.PaymentStatus,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the timestamps set by the database defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return s.q.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// UpdateReservation writes every mutable column of res.
func (s *Store) UpdateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET room_id = ?, guest_id = ?, status = ?, room_category = ?, check_in = ?, check_out = ?,
	               adults = ?, children = ?, payment_status = ?
	           WHERE id = ? AND hotel_id = ?`
	_, err := s.q.ExecContext(ctx, q,
		nullableID(res.RoomID), res.GuestID, res.Status, res.RoomCategory,
		dateArg(res.CheckIn), dateArg(res.CheckOut), res.Adults, res.Children, res.PaymentStatus,
		res.ID, res.HotelID,
	)
	return err
}
