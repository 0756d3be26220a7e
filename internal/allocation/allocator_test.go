package allocation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func booking(roomID *uint64, s model.DateRange) ReservationInput {
	return ReservationInput{
		RoomID:  roomID,
		GuestID: 42,
		Status:  model.ReservationBooked,
		Stay:    s,
		Adults:  2,
	}
}

func TestCreateRejectsOverlappingBooking(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	before := len(store.reservations)

	a := NewAllocator(store, nil, nil, nil)
	_, err := a.Create(ctx, 1, booking(ptr(r1.ID), stay("2024-01-03", "2024-01-06")))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already booked")
	assert.Len(t, store.reservations, before)
}

func TestCreateAllowsBackToBackStays(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Category: model.CategoryDeluxe})
	store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})

	a := NewAllocator(store, nil, nil, nil)
	in := booking(ptr(r1.ID), stay("2024-01-05", "2024-01-07"))
	in.RoomCategory = model.CategoryStandard
	out, err := a.Create(ctx, 1, in)
	require.NoError(t, err)

	res := out.Reservation
	assert.NotZero(t, res.ID)
	assert.Equal(t, model.CategoryDeluxe, res.RoomCategory)
	assert.Equal(t, model.PaymentPending, res.PaymentStatus)
	assert.Empty(t, out.Warnings)

	log, ok := store.usageLog(res.ID)
	require.True(t, ok)
	assert.Equal(t, r1.ID, log.RoomID)
	assert.Equal(t, day("2024-01-05"), log.StartedAt)
	assert.Equal(t, model.RoomAvailable, store.room(r1.ID).Status)
}

func TestCreateCheckedInOccupiesRoom(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})

	in := booking(ptr(r1.ID), stay("2024-02-01", "2024-02-03"))
	in.Status = model.ReservationCheckedIn
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, model.RoomOccupied, store.room(r1.ID).Status)
}

func TestCreateRejectsBlockedRoom(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Status: model.RoomMaintenance})

	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, booking(ptr(r1.ID), stay("2024-02-01", "2024-02-03")))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateSkipsChecksForNonBlockingStatus(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Status: model.RoomMaintenance})
	store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})

	in := booking(ptr(r1.ID), stay("2024-01-02", "2024-01-04"))
	in.Status = model.ReservationCanceled
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, model.RoomMaintenance, store.room(r1.ID).Status)
}

func TestCreateValidation(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	a := NewAllocator(store, nil, nil, nil)

	cases := map[string]func(in *ReservationInput){
		"empty range":         func(in *ReservationInput) { in.Stay = stay("2024-01-05", "2024-01-05") },
		"inverted range":      func(in *ReservationInput) { in.Stay = stay("2024-01-05", "2024-01-01") },
		"no adults":           func(in *ReservationInput) { in.Adults = 0 },
		"no guest":            func(in *ReservationInput) { in.GuestID = 0 },
		"bad status":          func(in *ReservationInput) { in.Status = "LOST" },
		"bad payment":         func(in *ReservationInput) { in.PaymentStatus = "FREE" },
		"check-in no room":    func(in *ReservationInput) { in.RoomID = nil; in.Status = model.ReservationCheckedIn },
		"no room no category": func(in *ReservationInput) { in.RoomID = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := booking(ptr(r1.ID), stay("2024-01-01", "2024-01-03"))
			mutate(&in)
			_, err := a.Create(context.Background(), 1, in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, store.reservations)
		})
	}
}

func TestCreateUnknownRoom(t *testing.T) {
	store := newMemStore()
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, booking(ptr(999), stay("2024-01-01", "2024-01-03")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRoomFromAnotherHotelIsNotFound(t *testing.T) {
	store := newMemStore()
	r := store.addRoom(t, model.Room{HotelID: 2, Number: "101"})
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, booking(ptr(r.ID), stay("2024-01-01", "2024-01-03")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUnassignedRejectedWhenCategoryFull(t *testing.T) {
	store := newMemStore()
	for _, n := range []string{"101", "102", "103"} {
		store.addRoom(t, model.Room{Number: n})
	}
	for i := 0; i < 3; i++ {
		store.addReservation(t, model.Reservation{RoomCategory: model.CategoryStandard, CheckIn: day("2024-03-01"), CheckOut: day("2024-03-04")})
	}
	before := len(store.reservations)

	in := booking(nil, stay("2024-03-02", "2024-03-03"))
	in.RoomCategory = model.CategoryStandard
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "no availability")
	assert.Len(t, store.reservations, before)

	avail, err := NewValidator(store).GetCategoryAvailability(context.Background(), 1, model.CategoryStandard, stay("2024-03-02", "2024-03-03"), nil)
	require.NoError(t, err)
	assert.Equal(t, CategoryAvailability{Category: model.CategoryStandard, TotalRooms: 3, ReservedRooms: 3, AvailableRooms: 0}, avail)
}

func TestCreateUnassignedWithoutActiveRooms(t *testing.T) {
	store := newMemStore()
	store.addRoom(t, model.Room{Number: "201", Category: model.CategorySuite, Status: model.RoomOutOfService})

	in := booking(nil, stay("2024-03-02", "2024-03-03"))
	in.RoomCategory = model.CategorySuite
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "no active rooms")
}

func TestCreateUnassignedWithinCapacity(t *testing.T) {
	store := newMemStore()
	store.addRoom(t, model.Room{Number: "101"})
	store.addRoom(t, model.Room{Number: "102"})
	store.addReservation(t, model.Reservation{RoomCategory: model.CategoryStandard, CheckIn: day("2024-03-01"), CheckOut: day("2024-03-04")})

	in := booking(nil, stay("2024-03-02", "2024-03-03"))
	in.RoomCategory = model.CategoryStandard
	out, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Nil(t, out.Reservation.RoomID)
	_, ok := store.usageLog(out.Reservation.ID)
	assert.False(t, ok)
}

func TestCreatePaidRunsSideEffects(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	conf, keys := &stubSideEffect{}, &stubSideEffect{}

	in := booking(ptr(r1.ID), stay("2024-01-01", "2024-01-03"))
	in.PaymentStatus = model.PaymentPaid
	out, err := NewAllocator(store, conf, keys, nil).Create(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, []uint64{out.Reservation.ID}, conf.calls)
	assert.Equal(t, []uint64{out.Reservation.ID}, keys.calls)
	assert.Empty(t, out.Warnings)
}

func TestSideEffectFailuresBecomeWarnings(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	conf := &stubSideEffect{err: errors.New("broker down")}
	keys := &stubSideEffect{err: errors.New("no entropy")}
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-03")})

	in := booking(ptr(r1.ID), res.Stay())
	in.PaymentStatus = model.PaymentPaid
	out, err := NewAllocator(store, conf, keys, nil).Update(context.Background(), 1, res.ID, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"guest confirmation could not be queued", "digital key could not be issued"}, out.Warnings)
	assert.Equal(t, model.PaymentPaid, store.reservation(res.ID).PaymentStatus)
}

func TestUpdateAlreadyPaidSkipsSideEffects(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), PaymentStatus: model.PaymentPaid, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-03")})
	conf := &stubSideEffect{}

	in := booking(ptr(r1.ID), stay("2024-01-01", "2024-01-04"))
	_, err := NewAllocator(store, conf, nil, nil).Update(context.Background(), 1, res.ID, in)
	require.NoError(t, err)
	assert.Empty(t, conf.calls)
	assert.Equal(t, model.PaymentPaid, store.reservation(res.ID).PaymentStatus)
}

func TestUpdateDatesOnlyKeepsPaymentStatus(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), PaymentStatus: model.PaymentPaid, CheckIn: day("2024-02-01"), CheckOut: day("2024-02-03")})
	alloc := NewAllocator(store, nil, nil, nil)

	out, err := alloc.Update(context.Background(), 1, res.ID, booking(ptr(r1.ID), stay("2024-02-02", "2024-02-05")))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, out.Reservation.PaymentStatus)
	assert.Equal(t, model.PaymentPaid, store.reservation(res.ID).PaymentStatus)

	in := booking(ptr(r1.ID), stay("2024-02-02", "2024-02-05"))
	in.PaymentStatus = model.PaymentRefunded
	_, err = alloc.Update(context.Background(), 1, res.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, store.reservation(res.ID).PaymentStatus)
}

func TestUpdateDoesNotConflictWithItself(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})

	out, err := NewAllocator(store, nil, nil, nil).Update(context.Background(), 1, res.ID, booking(ptr(r1.ID), stay("2024-01-02", "2024-01-06")))
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-06"), out.Reservation.CheckOut)

	log, ok := store.usageLog(res.ID)
	require.True(t, ok)
	assert.Equal(t, day("2024-01-02"), log.StartedAt)
	assert.Equal(t, day("2024-01-06"), log.EndedAt)
}

func TestUpdateMovingRoomFollowsKeysAndLog(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Status: model.RoomOccupied})
	r2 := store.addRoom(t, model.Room{Number: "102"})
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), Status: model.ReservationCheckedIn, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	key := store.addKey(res)

	in := booking(ptr(r2.ID), res.Stay())
	in.Status = model.ReservationCheckedIn
	_, err := NewAllocator(store, nil, nil, nil).Update(context.Background(), 1, res.ID, in)
	require.NoError(t, err)

	assert.Equal(t, model.RoomAvailable, store.room(r1.ID).Status)
	assert.Equal(t, model.RoomOccupied, store.room(r2.ID).Status)
	assert.Equal(t, r2.ID, *store.keys[key.ID].RoomID)
	log, ok := store.usageLog(res.ID)
	require.True(t, ok)
	assert.Equal(t, r2.ID, log.RoomID)
}

func TestUpdateCheckOutFreesRoomButNotMaintenance(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Status: model.RoomOccupied})
	r2 := store.addRoom(t, model.Room{Number: "102", Status: model.RoomMaintenance})
	a := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), Status: model.ReservationCheckedIn, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	b := store.addReservation(t, model.Reservation{RoomID: ptr(r2.ID), Status: model.ReservationCheckedIn, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	alloc := NewAllocator(store, nil, nil, nil)

	for _, res := range []model.Reservation{a, b} {
		in := booking(res.RoomID, res.Stay())
		in.Status = model.ReservationCheckedOut
		_, err := alloc.Update(context.Background(), 1, res.ID, in)
		require.NoError(t, err)
	}
	assert.Equal(t, model.RoomAvailable, store.room(r1.ID).Status)
	assert.Equal(t, model.RoomMaintenance, store.room(r2.ID).Status)
}

func TestMovingOffRoomFreesItEvenWithGuestCheckedIn(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101", Status: model.RoomOccupied})
	r2 := store.addRoom(t, model.Room{Number: "102"})
	store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), Status: model.ReservationCheckedIn, CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	later := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-10"), CheckOut: day("2024-01-12")})

	_, err := NewAllocator(store, nil, nil, nil).Update(context.Background(), 1, later.ID, booking(ptr(r2.ID), later.Stay()))
	require.NoError(t, err)
	assert.Equal(t, model.RoomAvailable, store.room(r1.ID).Status)
}

func TestUpdateUnassignDropsUsageLog(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	res := store.addReservation(t, model.Reservation{RoomID: ptr(r1.ID), CheckIn: day("2024-01-01"), CheckOut: day("2024-01-05")})
	key := store.addKey(res)

	in := booking(nil, res.Stay())
	in.RoomCategory = model.CategoryStandard
	_, err := NewAllocator(store, nil, nil, nil).Update(context.Background(), 1, res.ID, in)
	require.NoError(t, err)
	_, ok := store.usageLog(res.ID)
	assert.False(t, ok)
	assert.Nil(t, store.keys[key.ID].RoomID)
	assert.Nil(t, store.reservation(res.ID).RoomID)
}

func TestUpdateMissingReservation(t *testing.T) {
	store := newMemStore()
	_, err := NewAllocator(store, nil, nil, nil).Update(context.Background(), 1, 77, booking(nil, stay("2024-01-01", "2024-01-02")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRollsBackOnWriteFailure(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	store.failOn = "CreateUsageLog"

	in := booking(ptr(r1.ID), stay("2024-01-01", "2024-01-03"))
	in.Status = model.ReservationCheckedIn
	_, err := NewAllocator(store, nil, nil, nil).Create(context.Background(), 1, in)
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, store.reservations)
	assert.Equal(t, model.RoomAvailable, store.room(r1.ID).Status)
}

func TestBlockingReservationsNeverOverlapAfterSequence(t *testing.T) {
	store := newMemStore()
	r1 := store.addRoom(t, model.Room{Number: "101"})
	a := NewAllocator(store, nil, nil, nil)
	windows := []model.DateRange{
		stay("2024-05-01", "2024-05-04"),
		stay("2024-05-03", "2024-05-05"),
		stay("2024-05-04", "2024-05-06"),
		stay("2024-04-28", "2024-05-02"),
		stay("2024-05-06", "2024-05-07"),
		stay("2024-04-30", "2024-05-01"),
	}
	for _, w := range windows {
		_, _ = a.Create(context.Background(), 1, booking(ptr(r1.ID), w))
	}

	var held []model.DateRange
	for _, res := range store.reservations {
		if res.Status.Blocking() && res.RoomID != nil && *res.RoomID == r1.ID {
			held = append(held, res.Stay())
		}
	}
	assert.Len(t, held, 4)
	for i := range held {
		for j := i + 1; j < len(held); j++ {
			assert.False(t, held[i].Overlaps(held[j]), "%s overlaps %s", held[i], held[j])
		}
	}
}
