package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationInput is the full desired state of a reservation on create or
// update.  RoomCategory is only read when RoomID is nil; with a room it is
// overwritten from the room itself.
type ReservationInput struct {
	RoomID        *uint64
	GuestID       uint64
	Status        model.ReservationStatus
	RoomCategory  model.RoomCategory
	Stay          model.DateRange
	Adults        int
	Children      int
	PaymentStatus model.PaymentStatus
}

// AllocationResult is returned by a successful create or update.  Warnings
// carries side-effect failures that did not undo the allocation.
type AllocationResult struct {
	Reservation *model.Reservation
	Warnings    []string
}

// Allocator creates and updates single reservations.  The availability
// check runs before the write transaction opens, so two concurrent
// bookings at the edge of availability can both pass; swaps and
// reassignments do not have that window.
type Allocator struct {
	store     TxStore
	validator *Validator
	confirmer Confirmer
	keys      KeyIssuer
	log       *zap.Logger
}

// NewAllocator wires an allocator.  confirmer and keys may be nil, in which
// case the corresponding side effect is skipped.
func NewAllocator(store TxStore, confirmer Confirmer, keys KeyIssuer, log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{
		store:     store,
		validator: NewValidator(store),
		confirmer: confirmer,
		keys:      keys,
		log:       log,
	}
}

func (in ReservationInput) validate() error {
	if _, err := model.ParseReservationStatus(string(in.Status)); err != nil {
		return validationf("invalid status %q", in.Status)
	}
	if _, err := model.ParsePaymentStatus(string(in.PaymentStatus)); err != nil {
		return validationf("invalid payment status %q", in.PaymentStatus)
	}
	if !in.Stay.CheckOut.After(in.Stay.CheckIn) {
		return validationf("%s", model.ErrEmptyRange.Error())
	}
	if in.GuestID == 0 {
		return validationf("guest_id is required")
	}
	if in.Adults < 1 || in.Children < 0 {
		return validationf("a reservation needs at least one adult")
	}
	if in.RoomID == nil {
		if in.Status == model.ReservationCheckedIn || in.Status == model.ReservationCheckedOut {
			return validationf("a room must be assigned to set status %s", in.Status)
		}
		if _, err := model.ParseRoomCategory(string(in.RoomCategory)); err != nil {
			return validationf("room_category is required when no room is assigned")
		}
	}
	return nil
}

func (in ReservationInput) reservation(hotelID uint64) *model.Reservation {
	return &model.Reservation{
		HotelID:       hotelID,
		RoomID:        in.RoomID,
		GuestID:       in.GuestID,
		Status:        in.Status,
		RoomCategory:  in.RoomCategory,
		CheckIn:       in.Stay.CheckIn,
		CheckOut:      in.Stay.CheckOut,
		Adults:        in.Adults,
		Children:      in.Children,
		PaymentStatus: in.PaymentStatus,
	}
}

// Create validates and persists a new reservation, opens its usage log when
// a room is assigned and updates the room status.
func (a *Allocator) Create(ctx context.Context, hotelID uint64, in ReservationInput) (*AllocationResult, error) {
	if in.PaymentStatus == "" {
		in.PaymentStatus = model.PaymentPending
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	res := in.reservation(hotelID)
	if err := a.resolve(ctx, res, nil); err != nil {
		return nil, err
	}

	err := a.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateReservation(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		if res.RoomID != nil {
			if err := upsertUsageLog(ctx, tx, res, ""); err != nil {
				return err
			}
		}
		return applyRoomStatus(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("reservation created",
		zap.Uint64("hotel_id", hotelID),
		zap.Uint64("reservation_id", res.ID),
		zap.String("status", string(res.Status)),
		zap.String("stay", res.Stay().String()),
	)

	result := &AllocationResult{Reservation: res}
	if res.PaymentStatus == model.PaymentPaid {
		result.Warnings = a.afterPaid(ctx, *res)
	}
	return result, nil
}

// Update replaces the reservation's assignment, dates and statuses.  The
// reservation never conflicts with itself.  Moving off a room frees it;
// the usage log and digital keys follow the new room.
func (a *Allocator) Update(ctx context.Context, hotelID, reservationID uint64, in ReservationInput) (*AllocationResult, error) {
	prev, err := a.store.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundf("reservation %d not found", reservationID)
		}
		return nil, err
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = prev.PaymentStatus
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	res := in.reservation(hotelID)
	res.ID = prev.ID
	res.CreatedAt = prev.CreatedAt
	if err := a.resolve(ctx, res, &prev.ID); err != nil {
		return nil, err
	}
	roomChanged := !model.SameRoom(prev.RoomID, res.RoomID)

	err = a.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateReservation(ctx, res); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		if roomChanged {
			if prev.RoomID != nil {
				if err := releaseRoom(ctx, tx, hotelID, *prev.RoomID); err != nil {
					return err
				}
			}
			if _, err := tx.RepointDigitalKeys(ctx, hotelID, res.ID, res.RoomID); err != nil {
				return fmt.Errorf("repoint digital keys: %w", err)
			}
		}
		if res.RoomID == nil {
			if err := tx.DeleteUsageLogByReservation(ctx, hotelID, res.ID); err != nil {
				return fmt.Errorf("delete usage log: %w", err)
			}
		} else if err := upsertUsageLog(ctx, tx, res, ""); err != nil {
			return err
		}
		return applyRoomStatus(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("reservation updated",
		zap.Uint64("hotel_id", hotelID),
		zap.Uint64("reservation_id", res.ID),
		zap.String("status", string(res.Status)),
		zap.Bool("room_changed", roomChanged),
	)

	result := &AllocationResult{Reservation: res}
	if prev.PaymentStatus != model.PaymentPaid && res.PaymentStatus == model.PaymentPaid {
		result.Warnings = a.afterPaid(ctx, *res)
	}
	return result, nil
}

// resolve runs the availability rules for the reservation's target status
// and fills RoomCategory from the assigned room.
func (a *Allocator) resolve(ctx context.Context, res *model.Reservation, exclude *uint64) error {
	enforce := ShouldEnforceAvailability(res.Status)
	if res.RoomID != nil {
		category, err := a.validator.ValidateRoomAvailability(ctx, res.HotelID, *res.RoomID, res.Stay(), exclude, enforce)
		if err != nil {
			return err
		}
		res.RoomCategory = category
		return nil
	}
	if !enforce {
		return nil
	}
	avail, err := a.validator.GetCategoryAvailability(ctx, res.HotelID, res.RoomCategory, res.Stay(), exclude)
	if err != nil {
		return err
	}
	if avail.TotalRooms == 0 {
		return conflictf("no active rooms in category %s", res.RoomCategory)
	}
	if avail.AvailableRooms <= 0 {
		return conflictf("no availability in category %s for %s", res.RoomCategory, res.Stay())
	}
	return nil
}

// afterPaid queues the guest confirmation and issues a digital key.  Both
// collaborators are idempotent per reservation; their failures are
// reported as warnings only.
func (a *Allocator) afterPaid(ctx context.Context, res model.Reservation) []string {
	var warnings []string
	if a.confirmer != nil {
		if _, err := a.confirmer.QueueConfirmation(ctx, res); err != nil {
			a.log.Warn("confirmation not queued", zap.Uint64("reservation_id", res.ID), zap.Error(err))
			warnings = append(warnings, "guest confirmation could not be queued")
		}
	}
	if a.keys != nil {
		if _, err := a.keys.IssueKey(ctx, res); err != nil {
			a.log.Warn("digital key not issued", zap.Uint64("reservation_id", res.ID), zap.Error(err))
			warnings = append(warnings, "digital key could not be issued")
		}
	}
	return warnings
}

// applyRoomStatus writes the room status implied by the reservation's
// status.  A blocked room is never flipped back to AVAILABLE here; only an
// explicit room status change lifts maintenance.
func applyRoomStatus(ctx context.Context, tx Store, res *model.Reservation) error {
	if res.RoomID == nil {
		return nil
	}
	status, ok := RoomStatusFor(res.Status)
	if !ok {
		return nil
	}
	return setRoomStatus(ctx, tx, res.HotelID, *res.RoomID, status)
}

// releaseRoom frees a room a reservation just moved off.  It does not look
// for another guest still checked in there; the room goes AVAILABLE
// regardless and a later check-in write marks it OCCUPIED again.
func releaseRoom(ctx context.Context, tx Store, hotelID, roomID uint64) error {
	return setRoomStatus(ctx, tx, hotelID, roomID, model.RoomAvailable)
}

func setRoomStatus(ctx context.Context, tx Store, hotelID, roomID uint64, status model.RoomStatus) error {
	if status == model.RoomAvailable {
		room, err := tx.LockRoom(ctx, hotelID, roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if room.Status.Blocked() || room.Status == status {
			return nil
		}
	}
	if err := tx.UpdateRoomStatus(ctx, hotelID, roomID, status); err != nil {
		return fmt.Errorf("update room %d status: %w", roomID, err)
	}
	return nil
}

// upsertUsageLog points the reservation's usage log at its current room and
// dates, creating it when missing.  annotation, when set, is appended to
// the existing note.
func upsertUsageLog(ctx context.Context, tx Store, res *model.Reservation, annotation string) error {
	existing, err := tx.GetUsageLogByReservation(ctx, res.HotelID, res.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load usage log: %w", err)
	}
	if existing == nil {
		note := fmt.Sprintf("reservation #%d", res.ID)
		if annotation != "" {
			note = appendNote(note, annotation)
		}
		id := res.ID
		log := &model.RoomUsageLog{
			HotelID:       res.HotelID,
			RoomID:        *res.RoomID,
			ReservationID: &id,
			StartedAt:     res.CheckIn,
			EndedAt:       res.CheckOut,
			Note:          note,
		}
		if err := tx.CreateUsageLog(ctx, log); err != nil {
			return fmt.Errorf("create usage log: %w", err)
		}
		return nil
	}
	existing.RoomID = *res.RoomID
	existing.StartedAt = res.CheckIn
	existing.EndedAt = res.CheckOut
	if annotation != "" {
		existing.Note = appendNote(existing.Note, annotation)
	}
	if err := tx.UpdateUsageLog(ctx, existing); err != nil {
		return fmt.Errorf("update usage log: %w", err)
	}
	return nil
}

func appendNote(note, annotation string) string {
	if note == "" {
		return annotation
	}
	return note + "; " + annotation
}
