package handler // package handler translates allocation engine calls to HTTP

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/allocation"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Engine is the subset of *allocation.Engine the handlers call.
type Engine interface {
	CreateReservation(ctx context.Context, hotelID uint64, in allocation.ReservationInput) (*allocation.AllocationResult, error)
	UpdateReservation(ctx context.Context, hotelID, reservationID uint64, in allocation.ReservationInput) (*allocation.AllocationResult, error)
	GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error)
	SwapReservations(ctx context.Context, hotelID, primaryID, targetID uint64, requested model.DateRange) (*allocation.SwapResult, error)
	ChangeRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) (int, error)
	ValidateRoomAvailability(ctx context.Context, hotelID, roomID uint64, window model.DateRange, excludeReservationID *uint64) (model.RoomCategory, error)
	GetCategoryAvailability(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange) (allocation.CategoryAvailability, error)
}

var _ Engine = (*allocation.Engine)(nil)

// Handler serves the reservation, room and availability endpoints.  All
// methods assume JWTAuth already ran and read the hotel from the context.
type Handler struct {
	engine Engine
	log    *zap.Logger
}

// NewHandler panics on a nil engine.
func NewHandler(engine Engine, log *zap.Logger) *Handler {
	if engine == nil {
		panic("nil engine passed to NewHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, log: log.Named("handler")}
}

// respondError maps an engine failure to a status code.  Messages of typed
// engine errors are shown as is; anything else is logged and hidden.
func (h *Handler) respondError(c echo.Context, err error) error {
	var status int
	switch allocation.KindOf(err) {
	case allocation.KindValidation:
		status = http.StatusBadRequest
	case allocation.KindNotFound:
		status = http.StatusNotFound
	case allocation.KindConflict, allocation.KindAborted:
		status = http.StatusConflict
	default:
		if errors.Is(err, database.ErrSerialization) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, please retry"})
		}
		h.log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// hotelID is the tenant every engine call is scoped to.
func hotelID(c echo.Context) (uint64, bool) { return middleware.HotelID(c) }

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// bind decodes and validates a request body.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errors.New("invalid request body")
	}
	return c.Validate(dst)
}

// queryRange reads check_in and check_out query parameters.
func queryRange(c echo.Context) (model.DateRange, error) {
	r, err := model.ParseDateRange(c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		if errors.Is(err, model.ErrEmptyRange) {
			return model.DateRange{}, err
		}
		return model.DateRange{}, errors.New("check_in and check_out must be YYYY-MM-DD dates")
	}
	return r, nil
}
