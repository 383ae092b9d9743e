package consumer

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/parking-service/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// QueueName is the durable queue feeding admin notifications.
const QueueName = "parking-service.notifications"

// RoutingKeys lists the events the notification queue is bound to.
var RoutingKeys = []string{models.EventBookingCreated}

type BookingCreatedHandler interface {
	HandleBookingCreated(ctx context.Context, event models.BookingEvent) error
}

type BookingConsumer struct {
	handler BookingCreatedHandler
	log     logrus.FieldLogger
}

func NewBookingConsumer(handler BookingCreatedHandler, log logrus.FieldLogger) *BookingConsumer {
	return &BookingConsumer{handler: handler, log: log}
}

// Start drains msgs in the background until the channel closes.
func (bc *BookingConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			bc.handleMessage(ctx, msg)
		}
		bc.log.Info("delivery channel closed, stopping booking consumer")
	}()
}

func (bc *BookingConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var event models.BookingEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		bc.log.WithError(err).Warn("dropping malformed booking event")
		msg.Nack(false, false)
		return
	}

	entry := bc.log.WithFields(logrus.Fields{
		"booking_id":  event.BookingID,
		"routing_key": msg.RoutingKey,
	})

	switch msg.RoutingKey {
	case models.EventBookingCreated:
		// Notifications are best-effort: a failed send is logged and acked, never redelivered.
		if err := bc.handler.HandleBookingCreated(ctx, event); err != nil {
			entry.WithError(err).Error("admin notification failed")
		} else {
			entry.Info("admins notified of booking request")
		}
	default:
		entry.Debug("ignoring booking event")
	}

	msg.Ack(false)
}
