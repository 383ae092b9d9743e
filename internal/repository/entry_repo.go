package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.VehicleEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VehicleEntry, error)
	// CloseExit sets the exit fields only if they are still empty; false means someone else already did.
	CloseExit(ctx context.Context, tx *gorm.DB, id uuid.UUID, exitAt time.Time, amount int64) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VehicleEntry, error)
	CountOpen(ctx context.Context) (int64, error)
}

type entryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.VehicleEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *entryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.VehicleEntry, error) {
	var entry models.VehicleEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) CloseExit(ctx context.Context, tx *gorm.DB, id uuid.UUID, exitAt time.Time, amount int64) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&models.VehicleEntry{}).
		Where("id = ? AND exit_date_time IS NULL", id).
		Updates(map[string]any{
			"exit_date_time": exitAt,
			"charged_amount": amount,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *entryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VehicleEntry, error) {
	var entries []models.VehicleEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("entry_date_time DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *entryRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VehicleEntry{}).Where("exit_date_time IS NULL").Count(&count).Error
	return count, err
}
