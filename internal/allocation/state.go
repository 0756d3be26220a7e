package allocation

import "github.com/iliyamo/hotel-reservation/internal/model"

// roomStatusTable maps the status a reservation ends up in to the status
// its room takes.  Statuses missing from the table (BOOKED) leave the room
// untouched.
var roomStatusTable = map[model.ReservationStatus]model.RoomStatus{
	model.ReservationCheckedIn:  model.RoomOccupied,
	model.ReservationCheckedOut: model.RoomAvailable,
	model.ReservationCanceled:   model.RoomAvailable,
	model.ReservationNoShow:     model.RoomAvailable,
}

// RoomStatusFor returns the room status implied by a reservation status and
// whether a room-status write is due at all.
func RoomStatusFor(status model.ReservationStatus) (model.RoomStatus, bool) {
	rs, ok := roomStatusTable[status]
	return rs, ok
}

// ShouldEnforceAvailability reports whether a reservation in this status
// consumes its room going forward and so must pass conflict checks.
func ShouldEnforceAvailability(status model.ReservationStatus) bool {
	return status.Blocking()
}

// swapRoomStatus decides the status of a room after a cross-room swap,
// given the reservation moving in and the one moving out.
func swapRoomStatus(incoming, outgoing model.ReservationStatus) (model.RoomStatus, bool) {
	if incoming == model.ReservationCheckedIn {
		return model.RoomOccupied, true
	}
	if outgoing == model.ReservationCheckedIn {
		return model.RoomAvailable, true
	}
	return "", false
}
