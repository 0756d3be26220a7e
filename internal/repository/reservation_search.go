package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationSearch defines filters and pagination for listing a hotel's
// reservations.  From and To, when both set, keep stays that overlap
// [From, To).
type ReservationSearch struct {
	HotelID  uint64
	Status   model.ReservationStatus
	Category model.RoomCategory
	RoomID   uint64
	GuestID  uint64
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// SearchReservations returns one page of matches, earliest check-in first,
// and the total match count.
func (s *Store) SearchReservations(ctx context.Context, q ReservationSearch) ([]model.Reservation, int64, error) {
	where := []string{"hotel_id = ?"}
	args := []any{q.HotelID}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Category != "" {
		where = append(where, "room_category = ?")
		args = append(args, q.Category)
	}
	if q.RoomID > 0 {
		where = append(where, "room_id = ?")
		args = append(args, q.RoomID)
	}
	if q.GuestID > 0 {
		where = append(where, "guest_id = ?")
		args = append(args, q.GuestID)
	}
	if !q.From.IsZero() && !q.To.IsZero() {
		where = append(where, "check_in < ? AND check_out > ?")
		args = append(args, dateArg(q.To), dateArg(q.From))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	dataSQL := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + cond + `
		ORDER BY check_in, id LIMIT ? OFFSET ?`
	rows, err := s.q.QueryContext(ctx, dataSQL, append(append([]any{}, args...), size, (page-1)*size)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0, size)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
