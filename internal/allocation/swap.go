package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// SwapResult reports both reservations as committed.
type SwapResult struct {
	Primary  *model.Reservation
	Target   *model.Reservation
	SameRoom bool
}

// SwapReconciler exchanges rooms and/or stay dates between two
// reservations in a single transaction.
type SwapReconciler struct {
	store TxStore
	log   *zap.Logger
}

// NewSwapReconciler wires a swap reconciler.
func NewSwapReconciler(store TxStore, log *zap.Logger) *SwapReconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SwapReconciler{store: store, log: log}
}

// SwapReservations swaps primary and target.
//
// When both sit in the same room the two stays exchange dates and nobody
// moves.  Otherwise primary moves into target's room for the requested
// dates and target moves into primary's former room keeping its own dates.
// Every precondition failure rolls the whole swap back.
func (s *SwapReconciler) SwapReservations(ctx context.Context, hotelID, primaryID, targetID uint64, requested model.DateRange) (*SwapResult, error) {
	if primaryID == targetID {
		return nil, validationf("a reservation cannot be swapped with itself")
	}
	var result *SwapResult
	err := s.store.WithTx(ctx, func(tx Store) error {
		r, err := swapTx(ctx, tx, hotelID, primaryID, targetID, requested)
		if err != nil {
			return abort(err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("reservations swapped",
		zap.Uint64("hotel_id", hotelID),
		zap.Uint64("primary_id", primaryID),
		zap.Uint64("target_id", targetID),
		zap.Bool("same_room", result.SameRoom),
	)
	return result, nil
}

func loadSwappable(ctx context.Context, tx Store, hotelID, id uint64) (*model.Reservation, error) {
	res, err := tx.LockReservation(ctx, hotelID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundf("reservation %d not found", id)
		}
		return nil, err
	}
	if res.RoomID == nil {
		return nil, conflictf("reservation %d has no room assigned", id)
	}
	if !res.Status.Blocking() {
		return nil, conflictf("reservation %d is %s and cannot be swapped", id, res.Status)
	}
	return res, nil
}

func swapTx(ctx context.Context, tx Store, hotelID, primaryID, targetID uint64, requested model.DateRange) (*SwapResult, error) {
	primary, err := loadSwappable(ctx, tx, hotelID, primaryID)
	if err != nil {
		return nil, err
	}
	target, err := loadSwappable(ctx, tx, hotelID, targetID)
	if err != nil {
		return nil, err
	}
	sameRoom := *primary.RoomID == *target.RoomID
	primaryFrom := *primary.RoomID
	targetFrom := *target.RoomID

	var primaryStay, targetStay model.DateRange
	if sameRoom {
		primaryStay, targetStay = target.Stay(), primary.Stay()
	} else {
		if !requested.CheckOut.After(requested.CheckIn) {
			return nil, validationf("%s", model.ErrEmptyRange.Error())
		}
		primaryStay, targetStay = requested, target.Stay()
	}
	primaryTo, targetTo := targetFrom, primaryFrom

	rooms := map[uint64]*model.Room{}
	for _, id := range []uint64{primaryFrom, targetFrom} {
		if _, ok := rooms[id]; ok {
			continue
		}
		room, err := tx.LockRoom(ctx, hotelID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, notFoundf("room %d not found", id)
			}
			return nil, err
		}
		rooms[id] = room
	}

	moves := []struct {
		res  *model.Reservation
		room *model.Room
		stay model.DateRange
	}{
		{primary, rooms[primaryTo], primaryStay},
		{target, rooms[targetTo], targetStay},
	}
	for _, m := range moves {
		if ShouldEnforceAvailability(m.res.Status) && m.room.Status.Blocked() {
			return nil, conflictf("room %s is %s", m.room.Number, m.room.Status)
		}
	}
	for _, m := range moves {
		n, err := tx.CountRoomOverlaps(ctx, hotelID, m.room.ID, m.stay, primary.ID, target.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, conflictf("room %s is already booked for %s", m.room.Number, m.stay)
		}
	}

	for _, m := range moves {
		roomID := m.room.ID
		m.res.RoomID = &roomID
		m.res.RoomCategory = m.room.Category
		m.res.CheckIn, m.res.CheckOut = m.stay.CheckIn, m.stay.CheckOut
		if err := tx.UpdateReservation(ctx, m.res); err != nil {
			return nil, fmt.Errorf("update reservation %d: %w", m.res.ID, err)
		}
	}
	for _, m := range moves {
		other := target.ID
		if m.res == target {
			other = primary.ID
		}
		if err := upsertUsageLog(ctx, tx, m.res, fmt.Sprintf("swapped with reservation #%d", other)); err != nil {
			return nil, err
		}
		if _, err := tx.RepointDigitalKeys(ctx, hotelID, m.res.ID, m.res.RoomID); err != nil {
			return nil, fmt.Errorf("repoint digital keys: %w", err)
		}
	}

	if !sameRoom {
		// primary left primaryFrom for targetFrom; target went the other way.
		if st, ok := swapRoomStatus(primary.Status, target.Status); ok {
			if err := tx.UpdateRoomStatus(ctx, hotelID, targetFrom, st); err != nil {
				return nil, err
			}
		}
		if st, ok := swapRoomStatus(target.Status, primary.Status); ok {
			if err := tx.UpdateRoomStatus(ctx, hotelID, primaryFrom, st); err != nil {
				return nil, err
			}
		}
	}
	return &SwapResult{Primary: primary, Target: target, SameRoom: sameRoom}, nil
}
