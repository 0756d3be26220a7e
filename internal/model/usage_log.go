package model

import "time"

// RoomUsageLog is an audit record of a room's occupancy interval.  There is
// at most one log per reservation; it moves with the reservation whenever
// the room assignment or dates change.
//
// Fields:
//  ID            – primary key identifier.
//  HotelID       – tenant scope.
//  RoomID        – room being occupied.
//  ReservationID – reservation that caused the occupancy (nil for manual logs).
//  StartedAt     – start of the occupancy interval.
//  EndedAt       – end of the occupancy interval (exclusive).
//  Note          – free-text annotations, appended to by swaps and reassignments.
type RoomUsageLog struct {
	ID            uint64    // room_usage_logs.id
	HotelID       uint64    // room_usage_logs.hotel_id
	RoomID        uint64    // room_usage_logs.room_id
	ReservationID *uint64   // room_usage_logs.reservation_id (nullable)
	StartedAt     time.Time // room_usage_logs.started_at
	EndedAt       time.Time // room_usage_logs.ended_at
	Note          string    // room_usage_logs.note
}
