package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlateNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicles_live_plate_number,where:deleted_at IS NULL" json:"plateNumber"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// Soft-deleted so booking and entry history keeps its vehicle.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// NormalizePlate is the canonical form plates are stored and looked up in.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
