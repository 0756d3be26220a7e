package allocation

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// OverlapProbe reports whether a stay would collide with another blocking
// reservation on roomID.  The reservation being moved is ignored.
type OverlapProbe func(ctx context.Context, roomID uint64, stay model.DateRange, reservationID uint64) (bool, error)

// RoomMatcher picks the room a displaced reservation moves to.  It returns
// nil when no candidate fits.  Candidates arrive in room-number order.
type RoomMatcher interface {
	Pick(ctx context.Context, res model.Reservation, candidates []model.Room, overlaps OverlapProbe) (*model.Room, error)
}

// FirstFit takes the first candidate that can hold the reservation.  It
// makes no attempt at a globally optimal assignment.
type FirstFit struct{}

// Pick implements RoomMatcher.
func (FirstFit) Pick(ctx context.Context, res model.Reservation, candidates []model.Room, overlaps OverlapProbe) (*model.Room, error) {
	for i := range candidates {
		c := &candidates[i]
		if !Fits(res, *c) {
			continue
		}
		busy, err := overlaps(ctx, c.ID, res.Stay(), res.ID)
		if err != nil {
			return nil, err
		}
		if !busy {
			return c, nil
		}
	}
	return nil, nil
}

// Fits applies the static rules for moving a reservation into a room: a
// checked-in guest needs a room that is free right now, and the room must
// hold the whole party.
func Fits(res model.Reservation, room model.Room) bool {
	if res.Status == model.ReservationCheckedIn && room.Status != model.RoomAvailable {
		return false
	}
	return room.MaxGuests >= res.PartySize()
}
