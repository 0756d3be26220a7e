package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RoomCategory classifies a room for pricing and equivalence when guests
// are moved between rooms.
type RoomCategory string

const (
	CategoryStandard RoomCategory = "STANDARD"
	CategoryDeluxe   RoomCategory = "DELUXE"
	CategorySuite    RoomCategory = "SUITE"
	CategoryFamily   RoomCategory = "FAMILY"
	CategoryVilla    RoomCategory = "VILLA"
	CategoryOther    RoomCategory = "OTHER"
)

// ParseRoomCategory validates a category string coming from a request or a
// database row.
func ParseRoomCategory(s string) (RoomCategory, error) {
	switch RoomCategory(s) {
	case CategoryStandard, CategoryDeluxe, CategorySuite, CategoryFamily, CategoryVilla, CategoryOther:
		return RoomCategory(s), nil
	default:
		return "", fmt.Errorf("unknown room category: %s", s)
	}
}

// RoomStatus is the operational state of a physical room.
type RoomStatus string

const (
	RoomAvailable    RoomStatus = "AVAILABLE"
	RoomOccupied     RoomStatus = "OCCUPIED"
	RoomMaintenance  RoomStatus = "MAINTENANCE"
	RoomOutOfService RoomStatus = "OUT_OF_SERVICE"
)

// ParseRoomStatus validates a room status string.
func ParseRoomStatus(s string) (RoomStatus, error) {
	switch RoomStatus(s) {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomOutOfService:
		return RoomStatus(s), nil
	default:
		return "", fmt.Errorf("unknown room status: %s", s)
	}
}

// Blocked reports whether the room cannot take guests at all.
func (s RoomStatus) Blocked() bool {
	return s == RoomMaintenance || s == RoomOutOfService
}

// Room represents a bookable physical unit inside a hotel.  Rooms are
// owned by exactly one hotel and the room number is unique within it.
//
// Fields:
//  ID        – primary key identifier.
//  HotelID   – tenant that owns the room.
//  Number    – room number, unique per hotel (e.g. "101", "A-12").
//  Category  – room category used for equivalence and capacity counts.
//  Status    – AVAILABLE, OCCUPIED, MAINTENANCE or OUT_OF_SERVICE.
//  MaxGuests – maximum party size (adults + children).
//  Features  – free-text capability descriptor ("sea view, balcony").
//  BaseRate  – nightly base rate.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64          // rooms.id
	HotelID   uint64          // rooms.hotel_id
	Number    string          // rooms.number
	Category  RoomCategory    // rooms.category
	Status    RoomStatus      // rooms.status
	MaxGuests int             // rooms.max_guests
	Features  string          // rooms.features
	BaseRate  decimal.Decimal // rooms.base_rate
	CreatedAt time.Time       // rooms.created_at
	UpdatedAt time.Time       // rooms.updated_at
}

// RoomNumberLess orders room numbers numerically when both are plain
// integers, so "9" sorts before "10".  Anything else compares as text.
func RoomNumberLess(a, b string) bool {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil && x != y {
		return x < y
	}
	return a < b
}
