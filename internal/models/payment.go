package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"bookingId"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	Amount    int64         `gorm:"not null" json:"amount"`
	Status    PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
