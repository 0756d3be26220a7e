package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// RoomCatalog is implemented by *repository.RoomCatalog.
type RoomCatalog interface {
	Create(ctx context.Context, r *model.Room) error
	List(ctx context.Context, hotelID uint64, f repository.RoomFilter) ([]model.Room, error)
	UpdateDetails(ctx context.Context, r *model.Room) error
}

// ReservationSearcher is implemented by *repository.Store.
type ReservationSearcher interface {
	SearchReservations(ctx context.Context, q repository.ReservationSearch) ([]model.Reservation, int64, error)
}

// CatalogHandler serves room inventory and reservation listings.
type CatalogHandler struct {
	rooms  RoomCatalog
	search ReservationSearcher
	log    *zap.Logger
}

// NewCatalogHandler wires the catalog endpoints.
func NewCatalogHandler(rooms RoomCatalog, search ReservationSearcher, log *zap.Logger) *CatalogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogHandler{rooms: rooms, search: search, log: log.Named("catalog")}
}

type roomView struct {
	ID        uint64          `json:"id"`
	Number    string          `json:"number"`
	Category  string          `json:"category"`
	Status    string          `json:"status"`
	MaxGuests int             `json:"max_guests"`
	Features  string          `json:"features"`
	BaseRate  decimal.Decimal `json:"base_rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func roomViewOf(r model.Room) roomView {
	return roomView{
		ID: r.ID, Number: r.Number, Category: string(r.Category), Status: string(r.Status),
		MaxGuests: r.MaxGuests, Features: r.Features, BaseRate: r.BaseRate,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type createRoomReq struct {
	Number    string `json:"number" validate:"required,max=32"`
	Category  string `json:"category" validate:"required,oneof=STANDARD DELUXE SUITE FAMILY VILLA OTHER"`
	MaxGuests int    `json:"max_guests" validate:"gte=1,lte=20"`
	Features  string `json:"features" validate:"max=255"`
	BaseRate  string `json:"base_rate" validate:"omitempty,numeric"`
}

type updateRoomReq struct {
	Features string `json:"features" validate:"max=255"`
	BaseRate string `json:"base_rate" validate:"omitempty,numeric"`
}

func parseRate(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, errors.New("base_rate must be a non-negative amount")
	}
	return d.Round(2), nil
}

// CreateRoom handles POST /v1/rooms.  New rooms start AVAILABLE.
func (h *CatalogHandler) CreateRoom(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createRoomReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	rate, err := parseRate(req.BaseRate)
	if err != nil {
		return badRequest(c, err.Error())
	}
	room := &model.Room{
		HotelID:   hotel,
		Number:    strings.TrimSpace(req.Number),
		Category:  model.RoomCategory(req.Category),
		MaxGuests: req.MaxGuests,
		Features:  strings.TrimSpace(req.Features),
		BaseRate:  rate,
	}
	if err := h.rooms.Create(c.Request().Context(), room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		h.log.Error("create room", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": roomViewOf(*room)})
}

// ListRooms handles GET /v1/rooms?category=&status=.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	var f repository.RoomFilter
	if v := c.QueryParam("category"); v != "" {
		cat, err := model.ParseRoomCategory(strings.ToUpper(v))
		if err != nil {
			return badRequest(c, err.Error())
		}
		f.Category = cat
	}
	if v := c.QueryParam("status"); v != "" {
		st, err := model.ParseRoomStatus(strings.ToUpper(v))
		if err != nil {
			return badRequest(c, err.Error())
		}
		f.Status = st
	}
	rooms, err := h.rooms.List(c.Request().Context(), hotel, f)
	if err != nil {
		h.log.Error("list rooms", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	items := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, roomViewOf(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateRoom handles PATCH /v1/rooms/:id.
func (h *CatalogHandler) UpdateRoom(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	var req updateRoomReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	rate, err := parseRate(req.BaseRate)
	if err != nil {
		return badRequest(c, err.Error())
	}
	room := &model.Room{ID: id, HotelID: hotel, Features: strings.TrimSpace(req.Features), BaseRate: rate}
	if err := h.rooms.UpdateDetails(c.Request().Context(), room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		h.log.Error("update room", zap.Uint64("room_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": roomViewOf(*room)})
}

// ListReservations handles GET /v1/reservations with optional status,
// category, room_id, guest_id, check_in/check_out window and page,
// page_size.
func (h *CatalogHandler) ListReservations(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	q := repository.ReservationSearch{HotelID: hotel, Page: 1, PageSize: 20}
	if v := c.QueryParam("status"); v != "" {
		st, err := model.ParseReservationStatus(strings.ToUpper(v))
		if err != nil {
			return badRequest(c, err.Error())
		}
		q.Status = st
	}
	if v := c.QueryParam("category"); v != "" {
		cat, err := model.ParseRoomCategory(strings.ToUpper(v))
		if err != nil {
			return badRequest(c, err.Error())
		}
		q.Category = cat
	}
	for name, dst := range map[string]*uint64{"room_id": &q.RoomID, "guest_id": &q.GuestID} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return badRequest(c, "invalid "+name)
			}
			*dst = n
		}
	}
	for name, dst := range map[string]*int{"page": &q.Page, "page_size": &q.PageSize} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return badRequest(c, "invalid "+name)
			}
			*dst = n
		}
	}
	if c.QueryParam("check_in") != "" || c.QueryParam("check_out") != "" {
		window, err := queryRange(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		q.From, q.To = window.CheckIn, window.CheckOut
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	items, total, err := h.search.SearchReservations(c.Request().Context(), q)
	if err != nil {
		h.log.Error("search reservations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	views := make([]reservationView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     views,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}
