package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type AdminLookup interface {
	FindAdmins(ctx context.Context) ([]models.User, error)
}

type BookingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// Dispatcher routes committed booking changes to the event bus and email.
// With no publisher configured, admin notifications are sent in-process.
type Dispatcher struct {
	publisher Publisher
	email     *EmailNotifier
	admins    AdminLookup
	bookings  BookingLoader
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewDispatcher(publisher Publisher, email *EmailNotifier, admins AdminLookup, bookings BookingLoader, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		email:     email,
		admins:    admins,
		bookings:  bookings,
		log:       log,
		now:       time.Now,
	}
}

func (d *Dispatcher) BookingCreated(ctx context.Context, b *models.Booking) {
	if d.publish(ctx, models.EventBookingCreated, b) {
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		if err := d.NotifyAdmins(detached, b); err != nil {
			d.log.WithError(err).WithField("booking_id", b.ID).Error("admin notification failed")
		}
	}()
}

func (d *Dispatcher) BookingChanged(ctx context.Context, routingKey string, b *models.Booking) {
	d.publish(ctx, routingKey, b)
}

func (d *Dispatcher) TicketApproved(ctx context.Context, b *models.Booking) error {
	return d.email.TicketApproved(ctx, b)
}

// HandleBookingCreated is the bus-side half of BookingCreated.
func (d *Dispatcher) HandleBookingCreated(ctx context.Context, event models.BookingEvent) error {
	b, err := d.bookings.FindByID(ctx, event.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", event.BookingID, err)
	}
	return d.NotifyAdmins(ctx, b)
}

// NotifyAdmins emails every ADMIN user about a new booking request.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, b *models.Booking) error {
	admins, err := d.admins.FindAdmins(ctx)
	if err != nil {
		return fmt.Errorf("find admins: %w", err)
	}

	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	if len(emails) == 0 {
		d.log.WithField("booking_id", b.ID).Warn("no admin emails found to notify")
		return nil
	}

	return d.email.BookingRequested(ctx, b, emails)
}

// publish reports whether the event reached the bus.
func (d *Dispatcher) publish(ctx context.Context, routingKey string, b *models.Booking) bool {
	if d.publisher == nil {
		return false
	}
	if err := d.publisher.Publish(ctx, routingKey, models.NewBookingEvent(b, d.now())); err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"booking_id":  b.ID,
			"routing_key": routingKey,
		}).Error("publish booking event")
		return false
	}
	return true
}
