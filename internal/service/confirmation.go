// Package service implements the side effects that follow a reservation
// becoming fully paid: queueing the guest confirmation and issuing a
// digital key.  Both are idempotent per reservation.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// ConfirmationStore is the outbox the service writes to.
type ConfirmationStore interface {
	Exists(ctx context.Context, hotelID, reservationID uint64, typ model.ConfirmationType) (bool, error)
	Create(ctx context.Context, c *model.GuestConfirmation) error
	MarkPublished(ctx context.Context, messageID string) error
}

// EventPublisher delivers confirmation events to the broker.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// ConfirmationService records a booking confirmation in the outbox and
// publishes it.  A row that could not be published stays QUEUED until a
// ConfirmationRelay picks it up.
type ConfirmationService struct {
	store ConfirmationStore
	pub   EventPublisher
	log   *zap.Logger
	now   func() time.Time
}

// NewConfirmationService wires the service.  pub may be nil, in which
// case confirmations are only recorded.
func NewConfirmationService(store ConfirmationStore, pub EventPublisher, log *zap.Logger) *ConfirmationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmationService{store: store, pub: pub, log: log, now: time.Now}
}

// QueueConfirmation queues a booking confirmation for res.  It returns
// false without error when one already exists.
func (s *ConfirmationService) QueueConfirmation(ctx context.Context, res model.Reservation) (bool, error) {
	exists, err := s.store.Exists(ctx, res.HotelID, res.ID, model.ConfirmationBooking)
	if err != nil {
		return false, fmt.Errorf("check confirmation: %w", err)
	}
	if exists {
		return false, nil
	}

	row := &model.GuestConfirmation{
		HotelID:       res.HotelID,
		ReservationID: res.ID,
		Type:          model.ConfirmationBooking,
		MessageID:     uuid.NewString(),
		Status:        repository.ConfirmationQueued,
	}
	if err := s.store.Create(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("record confirmation: %w", err)
	}
	if s.pub == nil {
		return true, nil
	}

	if err := s.publish(ctx, *row, res); err != nil {
		return true, err
	}
	s.log.Info("confirmation queued",
		zap.Uint64("reservation_id", res.ID),
		zap.String("message_id", row.MessageID),
	)
	return true, nil
}

// publish sends the event for an outbox row and marks it PUBLISHED.  The
// row's message id is reused so a republish is a duplicate to consumers.
func (s *ConfirmationService) publish(ctx context.Context, row model.GuestConfirmation, res model.Reservation) error {
	ev := queue.ReservationConfirmedEvent{
		MessageID:     row.MessageID,
		HotelID:       res.HotelID,
		ReservationID: res.ID,
		GuestID:       res.GuestID,
		RoomID:        res.RoomID,
		RoomCategory:  string(res.RoomCategory),
		CheckIn:       res.CheckIn.Format(model.DateLayout),
		CheckOut:      res.CheckOut.Format(model.DateLayout),
		Nights:        res.Stay().Nights(),
		Guests:        res.PartySize(),
		Type:          string(row.Type),
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.pub.PublishReservationConfirmed(ctx, ev); err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	if err := s.store.MarkPublished(ctx, row.MessageID); err != nil {
		s.log.Warn("confirmation published but not marked", zap.String("message_id", row.MessageID), zap.Error(err))
	}
	return nil
}
