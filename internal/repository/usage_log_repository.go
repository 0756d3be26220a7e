package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// GetUsageLogByReservation returns the reservation's usage log or
// sql.ErrNoRows.
func (s *Store) GetUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) (*model.RoomUsageLog, error) {
	q := s.forUpdate(`SELECT id, hotel_id, room_id, reservation_id, started_at, ended_at, note
	      FROM room_usage_logs WHERE hotel_id = ? AND reservation_id = ?`)
	var l model.RoomUsageLog
	var resID sql.NullInt64
	var note sql.NullString
	err := s.q.QueryRowContext(ctx, q, hotelID, reservationID).Scan(
		&l.ID, &l.HotelID, &l.RoomID, &resID, &l.StartedAt, &l.EndedAt, &note,
	)
	if err != nil {
		return nil, err
	}
	if resID.Valid {
		id := uint64(resID.Int64)
		l.ReservationID = &id
	}
	l.Note = note.String
	return &l, nil
}

// CreateUsageLog inserts a usage log and fills its id.
func (s *Store) CreateUsageLog(ctx context.Context, log *model.RoomUsageLog) error {
	const q = `INSERT INTO room_usage_logs (hotel_id, room_id, reservation_id, started_at, ended_at, note)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q,
		log.HotelID, log.RoomID, nullableID(log.ReservationID), dateArg(log.StartedAt), dateArg(log.EndedAt), log.Note,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = uint64(id)
	return nil
}

// UpdateUsageLog moves a usage log to its current room, dates and note.
func (s *Store) UpdateUsageLog(ctx context.Context, log *model.RoomUsageLog) error {
	const q = `UPDATE room_usage_logs SET room_id = ?, started_at = ?, ended_at = ?, note = ?
	           WHERE id = ? AND hotel_id = ?`
	_, err := s.q.ExecContext(ctx, q, log.RoomID, dateArg(log.StartedAt), dateArg(log.EndedAt), log.Note, log.ID, log.HotelID)
	return err
}

// DeleteUsageLogByReservation removes the log of a reservation that lost
// its room.  A missing log is not an error.
func (s *Store) DeleteUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) error {
	const q = `DELETE FROM room_usage_logs WHERE hotel_id = ? AND reservation_id = ?`
	_, err := s.q.ExecContext(ctx, q, hotelID, reservationID)
	return err
}
