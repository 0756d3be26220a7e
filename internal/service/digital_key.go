package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// KeyStore persists digital keys.
type KeyStore interface {
	ExistsForReservation(ctx context.Context, hotelID, reservationID uint64) (bool, error)
	Create(ctx context.Context, k *model.DigitalKey) error
}

// keyCodeBytes is the entropy of a key code before hex encoding.
const keyCodeBytes = 16

// KeyService issues one digital key per reservation, bound to the
// reservation's current room.  The plain code is never stored.
type KeyService struct {
	store KeyStore
	cost  int
	log   *zap.Logger
}

// NewKeyService wires the service; cost is the bcrypt cost for key codes.
func NewKeyService(store KeyStore, cost int, log *zap.Logger) *KeyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &KeyService{store: store, cost: cost, log: log}
}

// IssueKey issues a key for res.  It returns false without error when the
// reservation already holds one.
func (s *KeyService) IssueKey(ctx context.Context, res model.Reservation) (bool, error) {
	exists, err := s.store.ExistsForReservation(ctx, res.HotelID, res.ID)
	if err != nil {
		return false, fmt.Errorf("check digital key: %w", err)
	}
	if exists {
		return false, nil
	}
	code, err := utils.RandomHex(keyCodeBytes)
	if err != nil {
		return false, fmt.Errorf("generate key code: %w", err)
	}
	hash, err := utils.HashSecret(code, s.cost)
	if err != nil {
		return false, fmt.Errorf("hash key code: %w", err)
	}
	key := &model.DigitalKey{
		HotelID:       res.HotelID,
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		CodeHash:      hash,
		IssuedAt:      time.Now().UTC(),
	}
	if err := s.store.Create(ctx, key); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("store digital key: %w", err)
	}
	s.log.Info("digital key issued", zap.Uint64("reservation_id", res.ID), zap.Uint64("key_id", key.ID))
	return true, nil
}
