package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
)

type User struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string             `gorm:"type:varchar(255);not null" json:"name"`
	Email              string             `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash       string             `gorm:"type:varchar(255);not null" json:"-"`
	Role               Role               `gorm:"type:varchar(10);not null;default:'USER';index" json:"role"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"verificationStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	Vehicles []Vehicle `gorm:"foreignKey:UserID" json:"vehicles,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
