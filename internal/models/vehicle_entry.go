package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleEntry is a walk-in parking session, independent of bookings.
type VehicleEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PlateNumber   string     `gorm:"type:varchar(20);not null;index" json:"plateNumber"`
	ParkingCode   string     `gorm:"type:varchar(8);not null;index" json:"parkingCode"`
	EntryDateTime time.Time  `gorm:"not null" json:"entryDateTime"`
	ExitDateTime  *time.Time `json:"exitDateTime"`
	ChargedAmount int64      `gorm:"not null;default:0" json:"chargedAmount"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicleId"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (e *VehicleEntry) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (e *VehicleEntry) HasExited() bool {
	return e.ExitDateTime != nil
}
