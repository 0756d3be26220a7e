package model

import (
	"fmt"
	"time"
)

// ReservationStatus is the lifecycle state of a guest stay.
type ReservationStatus string

const (
	ReservationBooked     ReservationStatus = "BOOKED"
	ReservationCheckedIn  ReservationStatus = "CHECKED_IN"
	ReservationCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationCanceled   ReservationStatus = "CANCELED"
	ReservationNoShow     ReservationStatus = "NO_SHOW"
)

// ParseReservationStatus validates a reservation status string.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case ReservationBooked, ReservationCheckedIn, ReservationCheckedOut, ReservationCanceled, ReservationNoShow:
		return ReservationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown reservation status: %s", s)
	}
}

// Blocking reports whether a reservation in this status occupies its room
// and therefore participates in overlap checks.
func (s ReservationStatus) Blocking() bool {
	return s == ReservationBooked || s == ReservationCheckedIn
}

// BlockingReservationStatuses lists the statuses that hold a room.
var BlockingReservationStatuses = []ReservationStatus{ReservationBooked, ReservationCheckedIn}

// PaymentStatus tracks the settlement state of a reservation.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// ParsePaymentStatus validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown payment status: %s", s)
	}
}

// Reservation records a guest stay over the half-open date interval
// [CheckIn, CheckOut).  A reservation may be unassigned (RoomID nil), in
// which case RoomCategory carries the requested category.  When a room is
// assigned RoomCategory mirrors that room's category.
//
// Fields:
//  ID            – primary key identifier.
//  HotelID       – tenant that owns the reservation.
//  RoomID        – assigned room (nil when unassigned).
//  GuestID       – guest who made the booking.
//  Status        – BOOKED, CHECKED_IN, CHECKED_OUT, CANCELED or NO_SHOW.
//  RoomCategory  – category booked or mirrored from the assigned room.
//  CheckIn       – first night (inclusive, date precision).
//  CheckOut      – departure date (exclusive).
//  Adults        – number of adults.
//  Children      – number of children.
//  PaymentStatus – settlement state.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64            // reservations.id
	HotelID       uint64            // reservations.hotel_id
	RoomID        *uint64           // reservations.room_id (nullable)
	GuestID       uint64            // reservations.guest_id
	Status        ReservationStatus // reservations.status
	RoomCategory  RoomCategory      // reservations.room_category
	CheckIn       time.Time         // reservations.check_in
	CheckOut      time.Time         // reservations.check_out
	Adults        int               // reservations.adults
	Children      int               // reservations.children
	PaymentStatus PaymentStatus     // reservations.payment_status
	CreatedAt     time.Time         // reservations.created_at
	UpdatedAt     time.Time         // reservations.updated_at
}

// PartySize is the number of guests the room must hold.
func (r Reservation) PartySize() int { return r.Adults + r.Children }

// HasRoom reports whether a room is assigned.
func (r Reservation) HasRoom() bool { return r.RoomID != nil }

// SameRoom reports whether both reservations are assigned to the same room.
func SameRoom(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
