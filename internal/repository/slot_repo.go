package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotFilter struct {
	Type        models.SlotType
	Size        models.SlotSize
	VehicleType models.VehicleType
	IsAvailable *bool
	SlotNumber  string
	ParkingName string
	Location    string
}

type SlotRepository interface {
	Create(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ParkingSlot, error)
	FindBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error)
	List(ctx context.Context, filter SlotFilter, page Pagination) ([]models.ParkingSlot, int64, error)
	ListAvailable(ctx context.Context, start, end time.Time, filter SlotFilter) ([]models.ParkingSlot, error)
	Update(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Count(ctx context.Context, availableOnly bool) (int64, error)
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error {
	return tx.WithContext(ctx).Create(slot).Error
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDForUpdate acquires a row-level lock on the slot within the given transaction.
// Bookings for the same slot serialize on this lock.
func (r *slotRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindBySlotNumber(ctx context.Context, slotNumber string) (*models.ParkingSlot, error) {
	var slot models.ParkingSlot
	if err := r.db.WithContext(ctx).Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) List(ctx context.Context, filter SlotFilter, page Pagination) ([]models.ParkingSlot, int64, error) {
	q := applySlotFilter(r.db.WithContext(ctx).Model(&models.ParkingSlot{}), filter).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var slots []models.ParkingSlot
	if err := q.Order("slot_number ASC").Offset(page.Offset()).Limit(page.Limit).Find(&slots).Error; err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// ListAvailable returns bookable slots with no active booking overlapping [start, end).
func (r *slotRepository) ListAvailable(ctx context.Context, start, end time.Time, filter SlotFilter) ([]models.ParkingSlot, error) {
	db := r.db.WithContext(ctx)

	booked := db.Model(&models.Booking{}).
		Select("slot_id").
		Where("status IN ?", models.ActiveBookingStatuses).
		Where("start_time < ? AND end_time > ?", end, start)

	filter.IsAvailable = nil
	q := applySlotFilter(db.Model(&models.ParkingSlot{}), filter).
		Where("is_available = ?", true).
		Where("available_spaces >= ?", 1).
		Where("id NOT IN (?)", booked)

	var slots []models.ParkingSlot
	if err := q.Order("slot_number ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) Update(ctx context.Context, tx *gorm.DB, slot *models.ParkingSlot) error {
	return tx.WithContext(ctx).Save(slot).Error
}

func (r *slotRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&models.ParkingSlot{}, "id = ?", id).Error
}

func (r *slotRepository) Count(ctx context.Context, availableOnly bool) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.ParkingSlot{})
	if availableOnly {
		q = q.Where("is_available = ? AND available_spaces >= ?", true, 1)
	}
	err := q.Count(&count).Error
	return count, err
}

func applySlotFilter(q *gorm.DB, f SlotFilter) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Size != "" {
		q = q.Where("size = ?", f.Size)
	}
	if f.VehicleType != "" {
		q = q.Where("vehicle_type = ?", f.VehicleType)
	}
	if f.IsAvailable != nil {
		q = q.Where("is_available = ?", *f.IsAvailable)
	}
	if f.SlotNumber != "" {
		q = q.Where("slot_number ILIKE ?", "%"+f.SlotNumber+"%")
	}
	if f.ParkingName != "" {
		q = q.Where("parking_name ILIKE ?", "%"+f.ParkingName+"%")
	}
	if f.Location != "" {
		q = q.Where("location ILIKE ?", "%"+f.Location+"%")
	}
	return q
}
