package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// memStore is an in-memory TxStore.  WithTx snapshots every table and
// restores the snapshot when fn fails, which is enough to observe
// all-or-nothing behaviour.
type memStore struct {
	rooms        map[uint64]model.Room
	reservations map[uint64]model.Reservation
	logs         map[uint64]model.RoomUsageLog
	keys         map[uint64]model.DigitalKey
	nextID       uint64

	// failOn makes the named method return errBoom.
	failOn string
	txs    int
}

var errBoom = errors.New("boom")

func newMemStore() *memStore {
	return &memStore{
		rooms:        map[uint64]model.Room{},
		reservations: map[uint64]model.Reservation{},
		logs:         map[uint64]model.RoomUsageLog{},
		keys:         map[uint64]model.DigitalKey{},
		nextID:       1000,
	}
}

func ptr(v uint64) *uint64 { return &v }

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(in, out string) model.DateRange {
	return model.DateRange{CheckIn: day(in), CheckOut: day(out)}
}

func (m *memStore) fail(method string) error {
	if m.failOn == method {
		return fmt.Errorf("%s: %w", method, errBoom)
	}
	return nil
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addRoom(t *testing.T, r model.Room) model.Room {
	t.Helper()
	if r.HotelID == 0 {
		r.HotelID = 1
	}
	if r.Status == "" {
		r.Status = model.RoomAvailable
	}
	if r.Category == "" {
		r.Category = model.CategoryStandard
	}
	if r.MaxGuests == 0 {
		r.MaxGuests = 2
	}
	if r.ID == 0 {
		r.ID = m.id()
	}
	m.rooms[r.ID] = r
	return r
}

func (m *memStore) addReservation(t *testing.T, r model.Reservation) model.Reservation {
	t.Helper()
	if r.HotelID == 0 {
		r.HotelID = 1
	}
	if r.Status == "" {
		r.Status = model.ReservationBooked
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = model.PaymentPending
	}
	if r.Adults == 0 {
		r.Adults = 1
	}
	if r.GuestID == 0 {
		r.GuestID = 7
	}
	if r.RoomID != nil {
		r.RoomCategory = m.rooms[*r.RoomID].Category
	}
	if r.ID == 0 {
		r.ID = m.id()
	}
	m.reservations[r.ID] = cloneReservation(r)
	if r.RoomID != nil {
		id := r.ID
		lid := m.id()
		m.logs[lid] = model.RoomUsageLog{ID: lid, HotelID: r.HotelID, RoomID: *r.RoomID, ReservationID: &id, StartedAt: r.CheckIn, EndedAt: r.CheckOut, Note: fmt.Sprintf("reservation #%d", r.ID)}
	}
	return r
}

func (m *memStore) addKey(r model.Reservation) model.DigitalKey {
	k := model.DigitalKey{ID: m.id(), HotelID: r.HotelID, ReservationID: r.ID, RoomID: r.RoomID, CodeHash: "x"}
	m.keys[k.ID] = k
	return k
}

func (m *memStore) room(id uint64) model.Room               { return m.rooms[id] }
func (m *memStore) reservation(id uint64) model.Reservation { return m.reservations[id] }

func (m *memStore) usageLog(reservationID uint64) (model.RoomUsageLog, bool) {
	for _, l := range m.logs {
		if l.ReservationID != nil && *l.ReservationID == reservationID {
			return l, true
		}
	}
	return model.RoomUsageLog{}, false
}

func cloneReservation(r model.Reservation) model.Reservation {
	if r.RoomID != nil {
		r.RoomID = ptr(*r.RoomID)
	}
	return r
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	m.txs++
	rooms := maps.Clone(m.rooms)
	reservations := maps.Clone(m.reservations)
	logs := maps.Clone(m.logs)
	keys := maps.Clone(m.keys)
	if err := fn(m); err != nil {
		m.rooms, m.reservations, m.logs, m.keys = rooms, reservations, logs, keys
		return err
	}
	return nil
}

func (m *memStore) GetRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error) {
	if err := m.fail("GetRoom"); err != nil {
		return nil, err
	}
	r, ok := m.rooms[roomID]
	if !ok || r.HotelID != hotelID {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memStore) LockRoom(ctx context.Context, hotelID, roomID uint64) (*model.Room, error) {
	if err := m.fail("LockRoom"); err != nil {
		return nil, err
	}
	return m.GetRoom(ctx, hotelID, roomID)
}

func (m *memStore) ListEquivalentRooms(ctx context.Context, hotelID uint64, source model.Room) ([]model.Room, error) {
	var out []model.Room
	for _, r := range m.rooms {
		if r.HotelID != hotelID || r.ID == source.ID || r.Category != source.Category || r.MaxGuests != source.MaxGuests || r.Status.Blocked() {
			continue
		}
		if source.Features != "" && r.Features != source.Features {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memStore) CountActiveRooms(ctx context.Context, hotelID uint64, category model.RoomCategory) (int, error) {
	n := 0
	for _, r := range m.rooms {
		if r.HotelID == hotelID && r.Category == category && !r.Status.Blocked() {
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateRoomStatus(ctx context.Context, hotelID, roomID uint64, status model.RoomStatus) error {
	if err := m.fail("UpdateRoomStatus"); err != nil {
		return err
	}
	r, ok := m.rooms[roomID]
	if !ok || r.HotelID != hotelID {
		return sql.ErrNoRows
	}
	r.Status = status
	m.rooms[roomID] = r
	return nil
}

func (m *memStore) GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error) {
	r, ok := m.reservations[reservationID]
	if !ok || r.HotelID != hotelID {
		return nil, sql.ErrNoRows
	}
	r = cloneReservation(r)
	return &r, nil
}

func (m *memStore) LockReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error) {
	return m.GetReservation(ctx, hotelID, reservationID)
}

func (m *memStore) ListActiveReservationsForRoom(ctx context.Context, hotelID, roomID uint64, now time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range m.reservations {
		if r.HotelID == hotelID && r.RoomID != nil && *r.RoomID == roomID && r.Status.Blocking() && r.CheckOut.After(now) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].ID < out[j].ID
		}
		return out[i].CheckIn.Before(out[j].CheckIn)
	})
	return out, nil
}

func (m *memStore) CountRoomOverlaps(ctx context.Context, hotelID, roomID uint64, window model.DateRange, exclude ...uint64) (int, error) {
	if err := m.fail("CountRoomOverlaps"); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range m.reservations {
		if r.HotelID != hotelID || r.RoomID == nil || *r.RoomID != roomID || !r.Status.Blocking() || slices.Contains(exclude, r.ID) {
			continue
		}
		if r.Stay().Overlaps(window) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountCategoryOverlaps(ctx context.Context, hotelID uint64, category model.RoomCategory, window model.DateRange, exclude ...uint64) (int, error) {
	n := 0
	for _, r := range m.reservations {
		if r.HotelID != hotelID || r.RoomCategory != category || !r.Status.Blocking() || slices.Contains(exclude, r.ID) {
			continue
		}
		if r.Stay().Overlaps(window) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if err := m.fail("CreateReservation"); err != nil {
		return err
	}
	res.ID = m.id()
	m.reservations[res.ID] = cloneReservation(*res)
	return nil
}

func (m *memStore) UpdateReservation(ctx context.Context, res *model.Reservation) error {
	if err := m.fail("UpdateReservation"); err != nil {
		return err
	}
	if _, ok := m.reservations[res.ID]; !ok {
		return sql.ErrNoRows
	}
	m.reservations[res.ID] = cloneReservation(*res)
	return nil
}

func (m *memStore) GetUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) (*model.RoomUsageLog, error) {
	l, ok := m.usageLog(reservationID)
	if !ok || l.HotelID != hotelID {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (m *memStore) CreateUsageLog(ctx context.Context, log *model.RoomUsageLog) error {
	if err := m.fail("CreateUsageLog"); err != nil {
		return err
	}
	log.ID = m.id()
	m.logs[log.ID] = *log
	return nil
}

func (m *memStore) UpdateUsageLog(ctx context.Context, log *model.RoomUsageLog) error {
	if err := m.fail("UpdateUsageLog"); err != nil {
		return err
	}
	m.logs[log.ID] = *log
	return nil
}

func (m *memStore) DeleteUsageLogByReservation(ctx context.Context, hotelID, reservationID uint64) error {
	if l, ok := m.usageLog(reservationID); ok {
		delete(m.logs, l.ID)
	}
	return nil
}

func (m *memStore) RepointDigitalKeys(ctx context.Context, hotelID, reservationID uint64, roomID *uint64) (int64, error) {
	if err := m.fail("RepointDigitalKeys"); err != nil {
		return 0, err
	}
	var n int64
	for id, k := range m.keys {
		if k.HotelID == hotelID && k.ReservationID == reservationID {
			if roomID != nil {
				k.RoomID = ptr(*roomID)
			} else {
				k.RoomID = nil
			}
			m.keys[id] = k
			n++
		}
	}
	return n, nil
}

// stubSideEffect records calls and returns err.
type stubSideEffect struct {
	calls []uint64
	err   error
}

func (s *stubSideEffect) QueueConfirmation(ctx context.Context, res model.Reservation) (bool, error) {
	s.calls = append(s.calls, res.ID)
	return s.err == nil, s.err
}

func (s *stubSideEffect) IssueKey(ctx context.Context, res model.Reservation) (bool, error) {
	s.calls = append(s.calls, res.ID)
	return s.err == nil, s.err
}
