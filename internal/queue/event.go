// Package queue defines the broker messages for guest confirmations and the
// RabbitMQ publisher and consumer that carry them.
package queue

// ConfirmationQueue is the durable queue guest confirmations go to.
const ConfirmationQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published once a reservation is fully paid.
// It carries enough for a notifier to message the guest without reading
// the primary database.
type ReservationConfirmedEvent struct {
	MessageID     string  `json:"message_id"`
	HotelID       uint64  `json:"hotel_id"`
	ReservationID uint64  `json:"reservation_id"`
	GuestID       uint64  `json:"guest_id"`
	RoomID        *uint64 `json:"room_id,omitempty"`
	RoomCategory  string  `json:"room_category"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Nights        int     `json:"nights"`
	Guests        int     `json:"guests"`
	Type          string  `json:"type"`
	ConfirmedAt   string  `json:"confirmed_at"`
}
