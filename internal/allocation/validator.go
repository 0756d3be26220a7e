package allocation

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Validator answers availability questions without writing anything.  It
// is safe to call repeatedly: identical inputs against unchanged data give
// identical answers.
type Validator struct {
	store Store
}

// NewValidator binds a validator to a store, which may be a transaction.
func NewValidator(store Store) *Validator { return &Validator{store: store} }

// CategoryAvailability is a capacity estimate for unassigned bookings.  It
// does not reserve a particular room, so two concurrent bookings near
// capacity can both observe a free slot and overbook the category.
type CategoryAvailability struct {
	Category       model.RoomCategory `json:"category"`
	TotalRooms     int                `json:"total_rooms"`
	ReservedRooms  int                `json:"reserved_rooms"`
	AvailableRooms int                `json:"available_rooms"`
}

// ValidateRoomAvailability checks that roomID can hold a stay over window.
// With enforce false only existence is checked.  excludeReservationID, when
// set, is ignored in the overlap count so a reservation does not conflict
// with itself on update.  On success the room's category is returned.
func (v *Validator) ValidateRoomAvailability(ctx context.Context, hotelID, roomID uint64, window model.DateRange, excludeReservationID *uint64, enforce bool) (model.RoomCategory, error) {
	room, err := v.store.GetRoom(ctx, hotelID, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", notFoundf("room %d not found", roomID)
		}
		return "", err
	}
	if !enforce {
		return room.Category, nil
	}
	if room.Status.Blocked() {
		return "", conflictf("room %s is %s and cannot be booked", room.Number, room.Status)
	}
	var exclude []uint64
	if excludeReservationID != nil {
		exclude = append(exclude, *excludeReservationID)
	}
	n, err := v.store.CountRoomOverlaps(ctx, hotelID, roomID, window, exclude...)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", conflictf("room %s is already booked for %s", room.Number, window)
	}
	return room.Category, nil
}

// GetCategoryAvailability estimates how many rooms of a category are still
// free over window.  Every blocking reservation of the category counts
// against capacity whether or not it has a room yet.
func (v *Validator) GetCategoryAvailability(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange, excludeReservationID *uint64) (CategoryAvailability, error) {
	total, err := v.store.CountActiveRooms(ctx, hotelID, category)
	if err != nil {
		return CategoryAvailability{}, err
	}
	var exclude []uint64
	if excludeReservationID != nil {
		exclude = append(exclude, *excludeReservationID)
	}
	reserved, err := v.store.CountCategoryOverlaps(ctx, hotelID, category, window, exclude...)
	if err != nil {
		return CategoryAvailability{}, err
	}
	return CategoryAvailability{
		Category:       category,
		TotalRooms:     total,
		ReservedRooms:  reserved,
		AvailableRooms: max(0, total-reserved),
	}, nil
}
