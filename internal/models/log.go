package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogAction string

const (
	ActionVehicleEntryRegistered LogAction = "VEHICLE_ENTRY_REGISTERED"
	ActionVehicleExitUpdated     LogAction = "VEHICLE_EXIT_UPDATED"
	ActionBookingCreated         LogAction = "BOOKING_CREATED"
	ActionBookingApproved        LogAction = "BOOKING_APPROVED"
	ActionBookingStatusUpdated   LogAction = "BOOKING_STATUS_UPDATED"
	ActionBookingCompleted       LogAction = "BOOKING_COMPLETED"
	ActionBookingPaid            LogAction = "BOOKING_PAID"
	ActionSlotCreated            LogAction = "SLOT_CREATED"
	ActionSlotUpdated            LogAction = "SLOT_UPDATED"
	ActionSlotDeleted            LogAction = "SLOT_DELETED"
)

// Log is the audit trail. Rows are inserted and read, never updated or deleted.
type Log struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Action    LogAction  `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   JSONMap    `gorm:"type:jsonb" json:"details"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// JSONMap stores a free-form object in a jsonb column.
type JSONMap map[string]any

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
