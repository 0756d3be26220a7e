package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Planner moves every active reservation off a room that is being taken
// out of service.  Either all of them move or none do.
type Planner struct {
	store   TxStore
	matcher RoomMatcher
	log     *zap.Logger
	now     func() time.Time
}

// PlannerOption customises a Planner.
type PlannerOption func(*Planner)

// WithMatcher replaces the first-fit room matcher.
func WithMatcher(m RoomMatcher) PlannerOption {
	return func(p *Planner) { p.matcher = m }
}

// WithClock sets the time source used to decide which stays are still in
// the future.
func WithClock(now func() time.Time) PlannerOption {
	return func(p *Planner) { p.now = now }
}

// NewPlanner wires a reassignment planner.
func NewPlanner(store TxStore, log *zap.Logger, opts ...PlannerOption) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Planner{store: store, matcher: FirstFit{}, log: log, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChangeRoomStatus sets a room's status.  Entering MAINTENANCE or
// OUT_OF_SERVICE first relocates the room's active reservations in the same
// transaction and fails as a whole if any of them has nowhere to go.  It
// returns how many reservations were moved.
func (p *Planner) ChangeRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) (int, error) {
	if _, err := model.ParseRoomStatus(string(status)); err != nil {
		return 0, validationf("invalid room status %q", status)
	}
	moved := 0
	err := p.store.WithTx(ctx, func(tx Store) error {
		if status.Blocked() {
			n, err := p.ReassignForMaintenance(ctx, tx, hotelID, roomID)
			if err != nil {
				return abort(err)
			}
			moved = n
		} else if _, err := tx.LockRoom(ctx, hotelID, roomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return abort(notFoundf("room %d not found", roomID))
			}
			return err
		}
		if err := tx.UpdateRoomStatus(ctx, hotelID, roomID, status); err != nil {
			return fmt.Errorf("update room %d status: %w", roomID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	p.log.Info("room status changed",
		zap.Uint64("hotel_id", hotelID),
		zap.Uint64("room_id", roomID),
		zap.String("status", string(status)),
		zap.Int("moved", moved),
	)
	return moved, nil
}

// ReassignForMaintenance relocates every BOOKED or CHECKED_IN reservation
// with a future check-out off roomID onto equivalent rooms.  It must run
// inside the transaction that blocks the room; on error the caller rolls
// back and nothing has moved.
func (p *Planner) ReassignForMaintenance(ctx context.Context, tx Store, hotelID, roomID uint64) (int, error) {
	room, err := tx.LockRoom(ctx, hotelID, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, notFoundf("room %d not found", roomID)
		}
		return 0, err
	}
	active, err := tx.ListActiveReservationsForRoom(ctx, hotelID, roomID, p.now())
	if err != nil {
		return 0, fmt.Errorf("load active reservations: %w", err)
	}
	if len(active) == 0 {
		return 0, nil
	}
	candidates, err := tx.ListEquivalentRooms(ctx, hotelID, *room)
	if err != nil {
		return 0, fmt.Errorf("load candidate rooms: %w", err)
	}
	sort.SliceStable(candidates, func(i, j int) bool { return model.RoomNumberLess(candidates[i].Number, candidates[j].Number) })

	probe := func(ctx context.Context, candidateID uint64, stay model.DateRange, reservationID uint64) (bool, error) {
		n, err := tx.CountRoomOverlaps(ctx, hotelID, candidateID, stay, reservationID)
		return n > 0, err
	}

	for i := range active {
		res := &active[i]
		to, err := p.matcher.Pick(ctx, *res, candidates, probe)
		if err != nil {
			return 0, err
		}
		if to == nil {
			return 0, conflictf("no equivalent room for reservation #%d (%s) while room %s goes out of service", res.ID, res.Stay(), room.Number)
		}
		if err := moveReservation(ctx, tx, res, to, room.Number); err != nil {
			return 0, err
		}
		if res.Status == model.ReservationCheckedIn {
			to.Status = model.RoomOccupied
		}
		p.log.Debug("reservation reassigned",
			zap.Uint64("reservation_id", res.ID),
			zap.String("from_room", room.Number),
			zap.String("to_room", to.Number),
		)
	}
	return len(active), nil
}

func moveReservation(ctx context.Context, tx Store, res *model.Reservation, to *model.Room, fromNumber string) error {
	roomID := to.ID
	res.RoomID = &roomID
	res.RoomCategory = to.Category
	if err := tx.UpdateReservation(ctx, res); err != nil {
		return fmt.Errorf("update reservation %d: %w", res.ID, err)
	}
	if err := upsertUsageLog(ctx, tx, res, fmt.Sprintf("reassigned for maintenance from room %s", fromNumber)); err != nil {
		return err
	}
	if _, err := tx.RepointDigitalKeys(ctx, res.HotelID, res.ID, res.RoomID); err != nil {
		return fmt.Errorf("repoint digital keys: %w", err)
	}
	if res.Status == model.ReservationCheckedIn {
		if err := tx.UpdateRoomStatus(ctx, res.HotelID, to.ID, model.RoomOccupied); err != nil {
			return fmt.Errorf("update room %d status: %w", to.ID, err)
		}
	}
	return nil
}
