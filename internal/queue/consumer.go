package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartConfirmationConsumer consumes ConfirmationQueue until ctx is
// cancelled, writing one structured log line per confirmation.  It redials
// with exponential backoff when the broker goes away; malformed messages
// are rejected without requeue so they cannot loop.
func StartConfirmationConsumer(ctx context.Context, url string, log *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("confirmation consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("confirmation consumer: loop ended, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("confirmation consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(ConfirmationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ConfirmationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, log); err != nil {
				log.Warn("confirmation consumer: bad message", zap.String("message_id", d.MessageId), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, log *zap.Logger) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == 0 || ev.HotelID == 0 {
		return errors.New("event without reservation or hotel")
	}
	fields := []zap.Field{
		zap.String("message_id", ev.MessageID),
		zap.Uint64("hotel_id", ev.HotelID),
		zap.Uint64("reservation_id", ev.ReservationID),
		zap.Uint64("guest_id", ev.GuestID),
		zap.String("room_category", ev.RoomCategory),
		zap.String("check_in", ev.CheckIn),
		zap.String("check_out", ev.CheckOut),
		zap.Int("nights", ev.Nights),
		zap.Int("guests", ev.Guests),
		zap.String("confirmed_at", ev.ConfirmedAt),
	}
	if ev.RoomID != nil {
		fields = append(fields, zap.Uint64("room_id", *ev.RoomID))
	}
	log.Info("reservation confirmed", fields...)
	return nil
}
