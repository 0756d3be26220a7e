package model

import "time"

// DigitalKey is an access credential bound to a reservation and to that
// reservation's current room.  RoomID must follow the reservation whenever
// it is moved.  Only a hash of the key code is stored.
type DigitalKey struct {
	ID            uint64    // digital_keys.id
	HotelID       uint64    // digital_keys.hotel_id
	ReservationID uint64    // digital_keys.reservation_id
	RoomID        *uint64   // digital_keys.room_id (nullable)
	CodeHash      string    // digital_keys.code_hash
	IssuedAt      time.Time // digital_keys.issued_at
}

// ConfirmationType distinguishes the kinds of guest messages that can be
// queued for a reservation.
type ConfirmationType string

const (
	ConfirmationBooking ConfirmationType = "BOOKING_CONFIRMATION"
)

// GuestConfirmation is an outbox row for a guest message.  At most one row
// exists per reservation and type.
type GuestConfirmation struct {
	ID            uint64           // guest_confirmations.id
	HotelID       uint64           // guest_confirmations.hotel_id
	ReservationID uint64           // guest_confirmations.reservation_id
	Type          ConfirmationType // guest_confirmations.type
	MessageID     string           // guest_confirmations.message_id
	Status        string           // guest_confirmations.status (QUEUED, PUBLISHED)
	CreatedAt     time.Time        // guest_confirmations.created_at
}
