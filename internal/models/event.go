package models

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for booking lifecycle events on the message bus.
const (
	EventBookingCreated       = "booking.created"
	EventBookingApproved      = "booking.approved"
	EventBookingStatusUpdated = "booking.status_updated"
	EventBookingCompleted     = "booking.completed"
	EventBookingPaid          = "booking.paid"
)

// BookingEvent is the message body published for booking lifecycle changes.
type BookingEvent struct {
	BookingID  uuid.UUID     `json:"bookingId"`
	UserID     uuid.UUID     `json:"userId"`
	VehicleID  uuid.UUID     `json:"vehicleId"`
	SlotID     uuid.UUID     `json:"slotId"`
	Status     BookingStatus `json:"status"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    time.Time     `json:"endTime"`
	IsPaid     bool          `json:"isPaid"`
	OccurredAt time.Time     `json:"occurredAt"`
}

func NewBookingEvent(b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		VehicleID:  b.VehicleID,
		SlotID:     b.SlotID,
		Status:     b.Status,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		IsPaid:     b.IsPaid,
		OccurredAt: at,
	}
}
