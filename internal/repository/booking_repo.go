package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingFilter struct {
	UserID *uuid.UUID
	Status models.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error)
	FindOverlapping(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, start, end time.Time) (*models.Booking, error)
	CountActiveBySlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (int64, error)
	CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
	List(ctx context.Context, filter BookingFilter, page Pagination) ([]models.Booking, int64, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error
	MarkPaid(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func withBookingRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("User").
		Preload("Vehicle", unscoped).
		Preload("ParkingSlot", unscoped).
		Preload("Payment")
}

// unscoped lets history show slots and vehicles that were deleted since.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := withBookingRelations(r.db.WithContext(ctx)).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row; status transitions on one booking serialize on it.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindOverlapping returns the first active booking on slotID intersecting [start, end).
func (r *bookingRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, start, end time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("slot_id = ? AND status IN ?", slotID, models.ActiveBookingStatuses).
		Where("start_time < ? AND end_time > ?", end, start).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountActiveBySlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_id = ? AND status IN ?", slotID, models.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, models.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter, page Pagination) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []models.Booking
	if err := withBookingRelations(q).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := withBookingRelations(r.db.WithContext(ctx)).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (r *bookingRepository) MarkPaid(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("is_paid", true).Error
}

func (r *bookingRepository) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *bookingRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
