package repository

import (
	"context"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID, status models.PaymentStatus) error
	SumByStatus(ctx context.Context, status models.PaymentStatus) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID, status models.PaymentStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("status", status).Error
}

func (r *paymentRepository) SumByStatus(ctx context.Context, status models.PaymentStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
