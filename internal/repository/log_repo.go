package repository

import (
	"context"

	"github.com/Eursukkul/parking-service/internal/models"
	"gorm.io/gorm"
)

// LogRepository is append-only: there is deliberately no update or delete.
type LogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.Log) error
	List(ctx context.Context, action models.LogAction, page Pagination) ([]models.Log, int64, error)
}

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.Log) error {
	return tx.WithContext(ctx).Omit("User").Create(entry).Error
}

func (r *logRepository) List(ctx context.Context, action models.LogAction, page Pagination) ([]models.Log, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Log{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.Log
	if err := q.Preload("User").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
