package dto

import (
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VehicleRequest struct {
	PlateNumber string `json:"plateNumber" validate:"required,max=20"`
}

type CreateSlotRequest struct {
	SlotNumber      *string             `json:"slotNumber" validate:"required,min=1,max=50"`
	Type            *models.SlotType    `json:"type" validate:"omitempty,oneof=REGULAR VIP"`
	Size            *models.SlotSize    `json:"size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	VehicleType     *models.VehicleType `json:"vehicleType" validate:"omitempty,oneof=CAR BIKE MOTORCYCLE TRUCK"`
	ChargePerHour   *int64              `json:"chargePerHour" validate:"omitempty,gte=0"`
	AvailableSpaces *int                `json:"availableSpaces" validate:"omitempty,gte=0"`
	IsAvailable     *bool               `json:"isAvailable"`
	ParkingName     *string             `json:"parkingName" validate:"omitempty,max=255"`
	Location        *string             `json:"location" validate:"omitempty,max=255"`
}

type UpdateSlotRequest struct {
	SlotNumber      *string             `json:"slotNumber" validate:"omitempty,min=1,max=50"`
	Type            *models.SlotType    `json:"type" validate:"omitempty,oneof=REGULAR VIP"`
	Size            *models.SlotSize    `json:"size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	VehicleType     *models.VehicleType `json:"vehicleType" validate:"omitempty,oneof=CAR BIKE MOTORCYCLE TRUCK"`
	ChargePerHour   *int64              `json:"chargePerHour" validate:"omitempty,gte=0"`
	AvailableSpaces *int                `json:"availableSpaces" validate:"omitempty,gte=0"`
	IsAvailable     *bool               `json:"isAvailable"`
	ParkingName     *string             `json:"parkingName" validate:"omitempty,max=255"`
	Location        *string             `json:"location" validate:"omitempty,max=255"`
}

type CreateBookingRequest struct {
	VehicleID string    `json:"vehicleId" validate:"required,uuid"`
	SlotID    string    `json:"slotId" validate:"required,uuid"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=PENDING APPROVED COMPLETED CANCELLED REJECTED"`
}

type VehicleEntryRequest struct {
	PlateNumber string `json:"plateNumber" validate:"required,max=20"`
}
