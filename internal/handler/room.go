package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomAvailability handles GET /v1/rooms/:id/availability.  A booked or
// blocked room answers 409 with the reason.
func (h *Handler) RoomAvailability(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	window, err := queryRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var exclude *uint64
	if raw := c.QueryParam("exclude_reservation_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return badRequest(c, "invalid exclude_reservation_id")
		}
		exclude = &id
	}
	category, err := h.engine.ValidateRoomAvailability(c.Request().Context(), hotel, roomID, window, exclude)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true, "room_category": category})
}

// CategoryAvailability handles GET /v1/availability/categories/:category.
func (h *Handler) CategoryAvailability(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	category, err := model.ParseRoomCategory(strings.ToUpper(c.Param("category")))
	if err != nil {
		return badRequest(c, err.Error())
	}
	window, err := queryRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	avail, err := h.engine.GetCategoryAvailability(c.Request().Context(), hotel, category, window)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":      avail,
		"check_in":  window.CheckIn.Format(model.DateLayout),
		"check_out": window.CheckOut.Format(model.DateLayout),
	})
}

type roomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE OCCUPIED MAINTENANCE OUT_OF_SERVICE"`
}

// ChangeRoomStatus handles PUT /v1/rooms/:id/status.  Taking a room out
// of service moves its guests first; moved is how many were relocated.
func (h *Handler) ChangeRoomStatus(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	var req roomStatusRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	moved, err := h.engine.ChangeRoomStatus(c.Request().Context(), hotel, roomID, model.RoomStatus(req.Status))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"moved": moved, "status": req.Status})
}
