package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditor struct {
	logs repository.LogRepository
}

// record appends an audit row inside tx so it commits with the change it describes.
func (a auditor) record(ctx context.Context, tx *gorm.DB, action models.LogAction, actor uuid.UUID, details models.JSONMap) error {
	entry := &models.Log{Action: action, Details: details}
	if actor != uuid.Nil {
		entry.UserID = &actor
	}
	if err := a.logs.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("write audit log %s: %w", action, err)
	}
	return nil
}
