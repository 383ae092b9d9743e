package auth

import (
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Owns reports whether the caller may act on a resource owned by userID.
func (p Principal) Owns(userID uuid.UUID) bool {
	return p.UserID == userID
}
