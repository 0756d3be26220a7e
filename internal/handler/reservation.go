package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/allocation"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// reservationRequest is the full desired state on create and update.
type reservationRequest struct {
	RoomID        *uint64 `json:"room_id" validate:"omitempty,gt=0"`
	GuestID       uint64  `json:"guest_id" validate:"required"`
	Status        string  `json:"status" validate:"required,oneof=BOOKED CHECKED_IN CHECKED_OUT CANCELED NO_SHOW"`
	RoomCategory  string  `json:"room_category" validate:"omitempty,oneof=STANDARD DELUXE SUITE FAMILY VILLA OTHER"`
	CheckIn       string  `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string  `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults        int     `json:"adults" validate:"gte=1"`
	Children      int     `json:"children" validate:"gte=0"`
	PaymentStatus string  `json:"payment_status" validate:"omitempty,oneof=PENDING PARTIAL PAID REFUNDED"`
}

// input leaves an empty payment status empty so an update keeps the
// stored one.
func (r reservationRequest) input() (allocation.ReservationInput, error) {
	stay, err := model.ParseDateRange(r.CheckIn, r.CheckOut)
	if err != nil {
		return allocation.ReservationInput{}, err
	}
	return allocation.ReservationInput{
		RoomID:        r.RoomID,
		GuestID:       r.GuestID,
		Status:        model.ReservationStatus(r.Status),
		RoomCategory:  model.RoomCategory(r.RoomCategory),
		Stay:          stay,
		Adults:        r.Adults,
		Children:      r.Children,
		PaymentStatus: model.PaymentStatus(r.PaymentStatus),
	}, nil
}

// reservationView is the JSON shape of a reservation.
type reservationView struct {
	ID            uint64    `json:"id"`
	RoomID        *uint64   `json:"room_id"`
	GuestID       uint64    `json:"guest_id"`
	Status        string    `json:"status"`
	RoomCategory  string    `json:"room_category"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func viewOf(r *model.Reservation) reservationView {
	return reservationView{
		ID:            r.ID,
		RoomID:        r.RoomID,
		GuestID:       r.GuestID,
		Status:        string(r.Status),
		RoomCategory:  string(r.RoomCategory),
		CheckIn:       r.CheckIn.Format(model.DateLayout),
		CheckOut:      r.CheckOut.Format(model.DateLayout),
		Nights:        r.Stay().Nights(),
		Adults:        r.Adults,
		Children:      r.Children,
		PaymentStatus: string(r.PaymentStatus),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func resultBody(res *allocation.AllocationResult) echo.Map {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return echo.Map{"item": viewOf(res.Reservation), "warnings": warnings}
}

// CreateReservation handles POST /v1/reservations.
func (h *Handler) CreateReservation(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	var req reservationRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	in, err := req.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = model.PaymentPending
	}
	res, err := h.engine.CreateReservation(c.Request().Context(), hotel, in)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, resultBody(res))
}

// UpdateReservation handles PUT /v1/reservations/:id.
func (h *Handler) UpdateReservation(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req reservationRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	in, err := req.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.engine.UpdateReservation(c.Request().Context(), hotel, id, in)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, resultBody(res))
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	res, err := h.engine.GetReservation(c.Request().Context(), hotel, id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": viewOf(res)})
}

type swapRequest struct {
	TargetID uint64 `json:"target_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
}

// SwapReservation handles POST /v1/reservations/:id/swap.  The dates are
// the primary's stay in the target's room; they are ignored when both
// reservations share a room, since the stays then just exchange dates.
func (h *Handler) SwapReservation(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	var req swapRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	var requested model.DateRange
	if req.CheckIn != "" && req.CheckOut != "" {
		// validator already checked the layout
		in, _ := time.Parse(model.DateLayout, req.CheckIn)
		out, _ := time.Parse(model.DateLayout, req.CheckOut)
		requested = model.DateRange{CheckIn: in, CheckOut: out}
	}
	res, err := h.engine.SwapReservations(c.Request().Context(), hotel, id, req.TargetID, requested)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"primary":   viewOf(res.Primary),
		"target":    viewOf(res.Target),
		"same_room": res.SameRoom,
	})
}
