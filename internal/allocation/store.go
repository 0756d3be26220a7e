package allocation

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Store is every read and write the engine performs.  All calls are scoped
// by hotel.  Lookups of a missing row return an error satisfying
// errors.Is(err, sql.ErrNoRows).  The same interface is served by the
// pooled store and by a store bound to an open transaction.
type Store interface {
	GetRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error)
	// LockRoom reads a room and, inside a transaction, holds a row lock on it
	// until commit.
	LockRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error)
	// ListEquivalentRooms returns the other rooms of the hotel with the same
	// category and max guests as source, not in a blocked status, and with
	// identical features when source has any.  Ordered by room number.
	ListEquivalentRooms(ctx context.Context, hotelID uint64, source model.Room) ([]model.Room, error)
	// CountActiveRooms counts rooms of a category that are not blocked.
	CountActiveRooms(ctx context.Context, hotelID uint64, category model.RoomCategory) (int, error)
	UpdateRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) error

	GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error)
	LockReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error)
	// ListActiveReservationsForRoom returns BOOKED and CHECKED_IN
	// reservations on the room whose check-out is after now, ordered by
	// check-in.
	ListActiveReservationsForRoom(ctx context.Context, hotelID, roomID uint64, now time.Time) ([]model.Reservation, error)
	// CountRoomOverlaps counts blocking reservations on the room overlapping
	// window, ignoring the excluded reservation ids.
	CountRoomOverlaps(ctx context.Context, hotelID, roomID uint64, window model.DateRange, exclude ...uint64) (int, error)
	// CountCategoryOverlaps counts blocking reservations of the category
	// overlapping window, assigned or not, ignoring the excluded ids.
	CountCategoryOverlaps(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange, exclude ...uint64) (int, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
	UpdateReservation(ctx context.Context, res *model.Reservation) error

	GetUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) (*model.RoomUsageLog, error)
	CreateUsageLog(ctx context.Context, log *model.RoomUsageLog) error
	UpdateUsageLog(ctx context.Context, log *model.RoomUsageLog) error
	DeleteUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) error

	// RepointDigitalKeys moves every key of the reservation to roomID.
	RepointDigitalKeys(ctx context.Context, hotelID, reservationID uint64, roomID *uint64) (int64, error)
}

// TxStore is a Store that can also run a function atomically.  fn receives
// a Store bound to the transaction; a non-nil return rolls everything back.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// Confirmer queues a guest confirmation for a reservation.  It reports
// false when one of that type already exists.
type Confirmer interface {
	QueueConfirmation(ctx context.Context, res model.Reservation) (bool, error)
}

// KeyIssuer issues a digital key for a reservation's current room.  It
// reports false when the reservation already has a key.
type KeyIssuer interface {
	IssueKey(ctx context.Context, res model.Reservation) (bool, error)
}
