package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// QueuedConfirmations lists outbox rows the broker never accepted.
type QueuedConfirmations interface {
	ListQueued(ctx context.Context, before time.Time, limit int) ([]model.GuestConfirmation, error)
}

// ReservationReader loads the reservation an outbox row points at.
type ReservationReader interface {
	GetReservation(ctx context.Context, hotelID, reservationID uint64) (*model.Reservation, error)
}

// ConfirmationRelay republishes confirmations left QUEUED after a broker
// outage.  Rows younger than Grace are skipped so a publish still in
// flight is not doubled.
type ConfirmationRelay struct {
	svc          *ConfirmationService
	queued       QueuedConfirmations
	reservations ReservationReader
	log          *zap.Logger

	Grace time.Duration
	Batch int
}

// NewConfirmationRelay wires a relay over the service's publisher.
func NewConfirmationRelay(svc *ConfirmationService, queued QueuedConfirmations, reservations ReservationReader, log *zap.Logger) *ConfirmationRelay {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmationRelay{
		svc:          svc,
		queued:       queued,
		reservations: reservations,
		log:          log,
		Grace:        time.Minute,
		Batch:        100,
	}
}

// RelayOnce publishes one batch and returns how many rows went out.  It
// stops at the first publish failure since the broker is likely still
// down; the remaining rows wait for the next run.
func (r *ConfirmationRelay) RelayOnce(ctx context.Context) (int, error) {
	if r.svc.pub == nil {
		return 0, nil
	}
	rows, err := r.queued.ListQueued(ctx, r.svc.now().Add(-r.Grace), r.Batch)
	if err != nil {
		return 0, fmt.Errorf("list queued confirmations: %w", err)
	}
	sent := 0
	for _, row := range rows {
		res, err := r.reservations.GetReservation(ctx, row.HotelID, row.ReservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				r.log.Warn("queued confirmation without reservation", zap.String("message_id", row.MessageID))
				continue
			}
			return sent, fmt.Errorf("load reservation %d: %w", row.ReservationID, err)
		}
		if err := r.svc.publish(ctx, row, *res); err != nil {
			return sent, err
		}
		sent++
	}
	if sent > 0 {
		r.log.Info("queued confirmations republished", zap.Int("count", sent))
	}
	return sent, nil
}
