package allocation

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Engine is the entry point used by the HTTP layer.  Every call takes the
// hotel explicitly; the engine holds no per-request state.
type Engine struct {
	store     TxStore
	validator *Validator
	allocator *Allocator
	swaps     *SwapReconciler
	planner   *Planner
}

// Deps bundles the engine's collaborators.  Confirmer and Keys are
// optional.
type Deps struct {
	Store     TxStore
	Confirmer Confirmer
	Keys      KeyIssuer
	Log       *zap.Logger
	Planner   []PlannerOption
}

// NewEngine wires all components over one store.
func NewEngine(d Deps) *Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:     d.Store,
		validator: NewValidator(d.Store),
		allocator: NewAllocator(d.Store, d.Confirmer, d.Keys, log.Named("allocator")),
		swaps:     NewSwapReconciler(d.Store, log.Named("swap")),
		planner:   NewPlanner(d.Store, log.Named("planner"), d.Planner...),
	}
}

// CreateReservation see Allocator.Create.
func (e *Engine) CreateReservation(ctx context.Context, hotelID uint64, in ReservationInput) (*AllocationResult, error) {
	return e.allocator.Create(ctx, hotelID, in)
}

// UpdateReservation see Allocator.Update.
func (e *Engine) UpdateReservation(ctx context.Context, hotelID, reservationID uint64, in ReservationInput) (*AllocationResult, error) {
	return e.allocator.Update(ctx, hotelID, reservationID, in)
}

// GetReservation loads one reservation in hotel scope.
func (e *Engine) GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error) {
	res, err := e.store.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundf("reservation %d not found", reservationID)
		}
		return nil, err
	}
	return res, nil
}

// SwapReservations see SwapReconciler.SwapReservations.
func (e *Engine) SwapReservations(ctx context.Context, hotelID, primaryID, targetID uint64, requested model.DateRange) (*SwapResult, error) {
	return e.swaps.SwapReservations(ctx, hotelID, primaryID, targetID, requested)
}

// ChangeRoomStatus see Planner.ChangeRoomStatus.
func (e *Engine) ChangeRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) (int, error) {
	return e.planner.ChangeRoomStatus(ctx, hotelID, roomID, status)
}

// ValidateRoomAvailability runs the enforced room check for a window.
func (e *Engine) ValidateRoomAvailability(ctx context.Context, hotelID, roomID uint64, window model.DateRange, excludeReservationID *uint64) (model.RoomCategory, error) {
	if !window.CheckOut.After(window.CheckIn) {
		return "", validationf("%s", model.ErrEmptyRange.Error())
	}
	return e.validator.ValidateRoomAvailability(ctx, hotelID, roomID, window, excludeReservationID, true)
}

// GetCategoryAvailability estimates free capacity for a category.
func (e *Engine) GetCategoryAvailability(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange) (CategoryAvailability, error) {
	if _, err := model.ParseRoomCategory(string(category)); err != nil {
		return CategoryAvailability{}, validationf("invalid room category %q", category)
	}
	if !window.CheckOut.After(window.CheckIn) {
		return CategoryAvailability{}, validationf("%s", model.ErrEmptyRange.Error())
	}
	return e.validator.GetCategoryAvailability(ctx, hotelID, category, window, nil)
}
