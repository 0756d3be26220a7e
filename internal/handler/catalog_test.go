package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

type fakeCatalog struct {
	rooms  []model.Room
	filter repository.RoomFilter
	search repository.ReservationSearch
}

func (f *fakeCatalog) Create(_ context.Context, r *model.Room) error {
	for _, o := range f.rooms {
		if o.HotelID == r.HotelID && o.Number == r.Number {
			return repository.ErrDuplicate
		}
	}
	r.ID = uint64(len(f.rooms) + 1)
	r.Status = model.RoomAvailable
	f.rooms = append(f.rooms, *r)
	return nil
}

func (f *fakeCatalog) List(_ context.Context, hotelID uint64, filter repository.RoomFilter) ([]model.Room, error) {
	f.filter = filter
	var out []model.Room
	for _, r := range f.rooms {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCatalog) UpdateDetails(_ context.Context, r *model.Room) error {
	for i, o := range f.rooms {
		if o.ID == r.ID && o.HotelID == r.HotelID {
			f.rooms[i].Features, f.rooms[i].BaseRate = r.Features, r.BaseRate
			*r = f.rooms[i]
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeCatalog) SearchReservations(_ context.Context, q repository.ReservationSearch) ([]model.Reservation, int64, error) {
	f.search = q
	res := model.Reservation{
		ID: 1, HotelID: q.HotelID, GuestID: 3, Status: model.ReservationBooked, RoomCategory: model.CategorySuite,
		CheckIn: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), CheckOut: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Adults: 1, PaymentStatus: model.PaymentPending,
	}
	return []model.Reservation{res}, 25, nil
}

func newCatalogServer(f *fakeCatalog, hotel uint64) *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	h := NewCatalogHandler(f, f, zap.NewNop())
	g := e.Group("/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxHotelID, hotel)
			return next(c)
		}
	})
	g.GET("/rooms", h.ListRooms)
	g.POST("/rooms", h.CreateRoom)
	g.PATCH("/rooms/:id", h.UpdateRoom)
	g.GET("/reservations", h.ListReservations)
	return e
}

func TestCreateAndListRooms(t *testing.T) {
	f := &fakeCatalog{}
	e := newCatalogServer(f, 4)

	rec := do(e, http.MethodPost, "/v1/rooms", `{"number":" 301 ","category":"DELUXE","max_guests":3,"features":"sea view","base_rate":"149.999"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, f.rooms, 1)
	assert.Equal(t, "301", f.rooms[0].Number)
	assert.Equal(t, uint64(4), f.rooms[0].HotelID)
	assert.True(t, decimal.RequireFromString("150").Equal(f.rooms[0].BaseRate))
	assert.Contains(t, rec.Body.String(), `"base_rate":"150"`)

	assert.Equal(t, http.StatusConflict, do(e, http.MethodPost, "/v1/rooms", `{"number":"301","category":"DELUXE","max_guests":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/rooms", `{"number":"302","category":"CASTLE","max_guests":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/rooms", `{"number":"302","category":"DELUXE","max_guests":3,"base_rate":"-1"}`).Code)

	rec = do(e, http.MethodGet, "/v1/rooms?category=deluxe&status=available", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.CategoryDeluxe, f.filter.Category)
	assert.Equal(t, model.RoomAvailable, f.filter.Status)
	assert.Contains(t, rec.Body.String(), `"number":"301"`)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/rooms?status=closed", "").Code)
}

func TestUpdateRoom(t *testing.T) {
	f := &fakeCatalog{rooms: []model.Room{{ID: 1, HotelID: 4, Number: "101", Category: model.CategoryStandard, MaxGuests: 2}}}
	e := newCatalogServer(f, 4)

	rec := do(e, http.MethodPatch, "/v1/rooms/1", `{"features":"garden","base_rate":"80"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "garden", f.rooms[0].Features)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPatch, "/v1/rooms/2", `{"features":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(newCatalogServer(f, 5), http.MethodPatch, "/v1/rooms/1", `{"features":"x"}`).Code)
}

func TestListReservations(t *testing.T) {
	f := &fakeCatalog{}
	e := newCatalogServer(f, 4)

	rec := do(e, http.MethodGet, "/v1/reservations?status=booked&room_id=12&check_in=2026-02-01&check_out=2026-02-05&page=2&page_size=500", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(4), f.search.HotelID)
	assert.Equal(t, model.ReservationBooked, f.search.Status)
	assert.Equal(t, uint64(12), f.search.RoomID)
	assert.Equal(t, 4*24*time.Hour, f.search.To.Sub(f.search.From))
	assert.Equal(t, 100, f.search.PageSize)
	assert.Contains(t, rec.Body.String(), `"total":25`)
	assert.Contains(t, rec.Body.String(), `"page":2`)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/reservations?room_id=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/reservations?check_in=2026-02-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/reservations?page=0", "").Code)
}
