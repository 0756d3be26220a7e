package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomCatalog manages the room inventory of a hotel.  Status changes do
// not go through here; they belong to the allocation engine.
type RoomCatalog struct {
	db *sql.DB
}

// NewRoomCatalog returns a RoomCatalog bound to db.
func NewRoomCatalog(db *sql.DB) *RoomCatalog { return &RoomCatalog{db: db} }

// RoomFilter narrows List.  Zero values match everything.
type RoomFilter struct {
	Category model.RoomCategory
	Status   model.RoomStatus
}

// Create inserts a room and reads it back so defaults and timestamps are
// filled in.  A number already used in the hotel returns ErrDuplicate.
func (c *RoomCatalog) Create(ctx context.Context, r *model.Room) error {
	if r.Status == "" {
		r.Status = model.RoomAvailable
	}
	const q = `INSERT INTO rooms (hotel_id, number, category, status, max_guests, features, base_rate)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := c.db.ExecContext(ctx, q, r.HotelID, r.Number, r.Category, r.Status, r.MaxGuests, r.Features, r.BaseRate)
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
	created, err := scanRoom(c.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*r = *created
	return nil
}

// List returns the hotel's rooms ordered by number.
func (c *RoomCatalog) List(ctx context.Context, hotelID uint64, f RoomFilter) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ?`
	args := []any{hotelID}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	rows, err := c.db.QueryContext(ctx, q+` ORDER BY number, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateDetails rewrites features and base rate.  Category and capacity
// stay fixed once created since existing bookings were matched on them.
// Returns sql.ErrNoRows when the room is not in the hotel.
func (c *RoomCatalog) UpdateDetails(ctx context.Context, r *model.Room) error {
	const q = `UPDATE rooms SET features = ?, base_rate = ? WHERE id = ? AND hotel_id = ?`
	if _, err := c.db.ExecContext(ctx, q, r.Features, r.BaseRate, r.ID, r.HotelID); err != nil {
		return err
	}
	updated, err := scanRoom(c.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ? AND hotel_id = ?`, r.ID, r.HotelID))
	if err != nil {
		return err
	}
	*r = *updated
	return nil
}
