package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotType string

const (
	SlotRegular SlotType = "REGULAR"
	SlotVIP     SlotType = "VIP"
)

type SlotSize string

const (
	SizeSmall  SlotSize = "SMALL"
	SizeMedium SlotSize = "MEDIUM"
	SizeLarge  SlotSize = "LARGE"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "CAR"
	VehicleBike       VehicleType = "BIKE"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleTruck      VehicleType = "TRUCK"
)

const (
	DefaultChargePerHour   int64 = 2000
	DefaultAvailableSpaces       = 1
)

type ParkingSlot struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SlotNumber      string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_parking_slots_live_slot_number,where:deleted_at IS NULL" json:"slotNumber"`
	Type            SlotType    `gorm:"type:varchar(20);not null;default:'REGULAR'" json:"type"`
	Size            SlotSize    `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"size"`
	VehicleType     VehicleType `gorm:"type:varchar(20);not null;default:'CAR'" json:"vehicleType"`
	ChargePerHour   int64       `gorm:"not null;default:2000" json:"chargePerHour"`
	AvailableSpaces int         `gorm:"not null;default:1" json:"availableSpaces"`
	IsAvailable     bool        `gorm:"not null;default:true" json:"isAvailable"`
	ParkingName     *string     `gorm:"type:varchar(255)" json:"parkingName,omitempty"`
	Location        *string     `gorm:"type:varchar(255)" json:"location,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	// Deleted slots stay behind for the bookings that reference them.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *ParkingSlot) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// CanBeBooked checks the static availability flag and capacity.
func (s *ParkingSlot) CanBeBooked() bool {
	return s.IsAvailable && s.AvailableSpaces >= 1
}

func (t SlotType) IsValid() bool {
	return t == SlotRegular || t == SlotVIP
}

func (s SlotSize) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleCar, VehicleBike, VehicleMotorcycle, VehicleTruck:
		return true
	}
	return false
}
