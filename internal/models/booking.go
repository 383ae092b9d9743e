package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRejected  BookingStatus = "REJECTED"
)

// ActiveBookingStatuses hold a slot: they take part in overlap checks.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingApproved}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingApproved
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingRejected
}

// RefundsPayment reports whether moving into s refunds a paid booking.
func (s BookingStatus) RefundsPayment() bool {
	return s == BookingCancelled || s == BookingRejected
}

type Booking struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	VehicleID uuid.UUID     `gorm:"type:uuid;not null;index" json:"vehicleId"`
	SlotID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"slotId"`
	StartTime time.Time     `gorm:"not null" json:"startTime"`
	EndTime   time.Time     `gorm:"not null" json:"endTime"`
	ExpiresAt time.Time     `gorm:"not null" json:"expiresAt"`
	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IsPaid    bool          `gorm:"not null;default:false" json:"isPaid"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Vehicle     *Vehicle     `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	ParkingSlot *ParkingSlot `gorm:"foreignKey:SlotID;constraint:OnDelete:RESTRICT" json:"parkingSlot,omitempty"`
	Payment     *Payment     `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Overlaps is the half-open interval test used for double-booking checks.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
