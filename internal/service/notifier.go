package service

import (
	"context"

	"github.com/Eursukkul/parking-service/internal/models"
)

// BookingNotifier receives committed booking changes. Implementations must not block
// on anything but TicketApproved, whose error is reported back to the caller.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking)
	BookingChanged(ctx context.Context, routingKey string, booking *models.Booking)
	TicketApproved(ctx context.Context, booking *models.Booking) error
}

type TicketRenderer interface {
	Render(booking *models.Booking) ([]byte, error)
}

type noopNotifier struct{}

func (noopNotifier) BookingCreated(context.Context, *models.Booking)         {}
func (noopNotifier) BookingChanged(context.Context, string, *models.Booking) {}
func (noopNotifier) TicketApproved(context.Context, *models.Booking) error   { return nil }
