package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	VehicleID uuid.UUID
	SlotID    uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

// ApprovalResult carries the approved booking and the outcome of ticket delivery.
// A non-nil TicketErr means the approval committed but the ticket did not reach the owner.
type ApprovalResult struct {
	Booking   *models.Booking
	TicketErr error
}

type BookingService interface {
	Create(ctx context.Context, p auth.Principal, in CreateBookingInput) (*models.Booking, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, p auth.Principal, status models.BookingStatus, page repository.Pagination) ([]models.Booking, int64, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	Approve(ctx context.Context, p auth.Principal, id uuid.UUID) (*ApprovalResult, error)
	UpdateStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error)
	Cancel(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	Pay(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)
	Ticket(ctx context.Context, p auth.Principal, id uuid.UUID) ([]byte, error)
}

type bookingService struct {
	tx       repository.Transactor
	bookings repository.BookingRepository
	slots    repository.SlotRepository
	vehicles repository.VehicleRepository
	payments repository.PaymentRepository
	audit    auditor
	notifier BookingNotifier
	tickets  TicketRenderer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewBookingService(
	tx repository.Transactor,
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	vehicles repository.VehicleRepository,
	payments repository.PaymentRepository,
	logs repository.LogRepository,
	notifier BookingNotifier,
	tickets TicketRenderer,
	log logrus.FieldLogger,
) BookingService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &bookingService{
		tx:       tx,
		bookings: bookings,
		slots:    slots,
		vehicles: vehicles,
		payments: payments,
		audit:    auditor{logs: logs},
		notifier: notifier,
		tickets:  tickets,
		log:      log,
		now:      time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, p auth.Principal, in CreateBookingInput) (*models.Booking, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	now := s.now()
	var result *models.Booking

	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock the slot row so concurrent bookings on it serialize
		slot, err := s.slots.FindByIDForUpdate(ctx, tx, in.SlotID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("lock slot: %w", err)
		}
		if !slot.CanBeBooked() {
			return ErrSlotUnavailable
		}

		// 2. Vehicle must exist and belong to the caller
		vehicle, err := s.vehicles.FindByID(ctx, in.VehicleID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("find vehicle: %w", err)
		}
		if vehicle.UserID != p.UserID {
			return ErrVehicleNotOwned
		}

		// 3. No active booking on the slot may intersect [start, end)
		_, err = s.bookings.FindOverlapping(ctx, tx, slot.ID, in.StartTime, in.EndTime)
		if err == nil {
			return ErrSlotConflict
		}
		if !repository.IsNotFound(err) {
			return fmt.Errorf("check overlap: %w", err)
		}

		// 4. Booking, payment and audit commit together
		booking := &models.Booking{
			UserID:    p.UserID,
			VehicleID: vehicle.ID,
			SlotID:    slot.ID,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			ExpiresAt: now.Add(BookingHoldDuration),
			Status:    models.BookingPending,
		}
		if err := s.bookings.Create(ctx, tx, booking); err != nil {
			if repository.IsExclusionViolation(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create booking: %w", err)
		}

		payment := &models.Payment{
			BookingID: booking.ID,
			UserID:    p.UserID,
			Amount:    BookingFee(in.StartTime, in.EndTime, slot.ChargePerHour),
			Status:    models.PaymentPending,
		}
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := s.audit.record(ctx, tx, models.ActionBookingCreated, p.UserID, models.JSONMap{
			"bookingId": booking.ID.String(),
			"slotId":    slot.ID.String(),
			"vehicleId": vehicle.ID.String(),
			"amount":    payment.Amount,
		}); err != nil {
			return err
		}

		booking.ParkingSlot = slot
		booking.Vehicle = vehicle
		booking.Payment = payment
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": result.ID,
		"slot_id":    result.SlotID,
		"user_id":    result.UserID,
	}).Info("booking created")

	s.notifier.BookingCreated(ctx, result)
	return result, nil
}

func (s *bookingService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !p.Owns(booking.UserID) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, p auth.Principal, status models.BookingStatus, page repository.Pagination) ([]models.Booking, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.BookingFilter{Status: status}
	if !p.IsAdmin() {
		filter.UserID = &p.UserID
	}
	return s.bookings.List(ctx, filter, page)
}

func (s *bookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.bookings.ListAll(ctx)
}

func (s *bookingService) Approve(ctx context.Context, p auth.Principal, id uuid.UUID) (*ApprovalResult, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	var locked *models.Booking
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingPending {
			return ErrBookingNotPending
		}

		if err := s.bookings.UpdateStatus(ctx, tx, booking.ID, models.BookingApproved); err != nil {
			return fmt.Errorf("approve booking: %w", err)
		}
		booking.Status = models.BookingApproved
		locked = booking

		return s.audit.record(ctx, tx, models.ActionBookingApproved, p.UserID, models.JSONMap{
			"bookingId": booking.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	booking := s.reload(ctx, locked)
	s.notifier.BookingChanged(ctx, models.EventBookingApproved, booking)

	result := &ApprovalResult{Booking: booking}
	if err := s.notifier.TicketApproved(ctx, booking); err != nil {
		s.log.WithError(err).WithField("booking_id", booking.ID).Error("approval ticket not delivered")
		result.TicketErr = err
	}
	return result, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, p auth.Principal, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	var locked *models.Booking
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}

		if !p.IsAdmin() {
			if !p.Owns(booking.UserID) {
				return ErrForbidden
			}
			if status != models.BookingCancelled {
				return ErrCancelOnly
			}
			if booking.Status != models.BookingPending {
				return ErrBookingNotPending
			}
		}

		if status.RefundsPayment() {
			if err := s.refund(ctx, tx, booking.ID); err != nil {
				return err
			}
		}

		previous := booking.Status
		if err := s.bookings.UpdateStatus(ctx, tx, booking.ID, status); err != nil {
			// Reactivating a booking can collide with a newer one on the slot.
			if repository.IsExclusionViolation(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("update booking status: %w", err)
		}
		booking.Status = status
		locked = booking

		return s.audit.record(ctx, tx, models.ActionBookingStatusUpdated, p.UserID, models.JSONMap{
			"bookingId": booking.ID.String(),
			"from":      string(previous),
			"to":        string(status),
		})
	})
	if err != nil {
		return nil, err
	}

	booking := s.reload(ctx, locked)
	s.notifier.BookingChanged(ctx, models.EventBookingStatusUpdated, booking)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	return s.UpdateStatus(ctx, p, id, models.BookingCancelled)
}

func (s *bookingService) Complete(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	var locked *models.Booking
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !p.Owns(booking.UserID) {
			return ErrForbidden
		}
		if booking.Status != models.BookingApproved {
			return ErrBookingNotApproved
		}

		if err := s.bookings.UpdateStatus(ctx, tx, booking.ID, models.BookingCompleted); err != nil {
			return fmt.Errorf("complete booking: %w", err)
		}
		booking.Status = models.BookingCompleted
		locked = booking

		return s.audit.record(ctx, tx, models.ActionBookingCompleted, p.UserID, models.JSONMap{
			"bookingId": booking.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	booking := s.reload(ctx, locked)
	s.notifier.BookingChanged(ctx, models.EventBookingCompleted, booking)
	return booking, nil
}

func (s *bookingService) Pay(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error) {
	var locked *models.Booking
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !p.Owns(booking.UserID) {
			return ErrForbidden
		}
		if booking.Status != models.BookingApproved {
			return ErrBookingNotApproved
		}
		if booking.IsPaid {
			return ErrBookingAlreadyPaid
		}

		payment, err := s.payments.FindByBookingID(ctx, tx, booking.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("find payment: %w", err)
		}
		if payment.Status == models.PaymentPaid {
			return ErrBookingAlreadyPaid
		}

		if err := s.payments.UpdateStatus(ctx, tx, payment.ID, models.PaymentPaid); err != nil {
			return fmt.Errorf("mark payment paid: %w", err)
		}
		if err := s.bookings.MarkPaid(ctx, tx, booking.ID); err != nil {
			return fmt.Errorf("mark booking paid: %w", err)
		}
		booking.IsPaid = true
		payment.Status = models.PaymentPaid
		booking.Payment = payment
		locked = booking

		return s.audit.record(ctx, tx, models.ActionBookingPaid, p.UserID, models.JSONMap{
			"bookingId": booking.ID.String(),
			"amount":    payment.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	booking := s.reload(ctx, locked)
	s.notifier.BookingChanged(ctx, models.EventBookingPaid, booking)
	return booking, nil
}

func (s *bookingService) Ticket(ctx context.Context, p auth.Principal, id uuid.UUID) ([]byte, error) {
	booking, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	pdf, err := s.tickets.Render(booking)
	if err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return pdf, nil
}

// refund flips a PAID payment to REFUNDED. Unpaid or missing payments are left alone.
func (s *bookingService) refund(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	payment, err := s.payments.FindByBookingID(ctx, tx, bookingID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find payment: %w", err)
	}
	if payment.Status != models.PaymentPaid {
		return nil
	}
	if err := s.payments.UpdateStatus(ctx, tx, payment.ID, models.PaymentRefunded); err != nil {
		return fmt.Errorf("refund payment: %w", err)
	}
	return nil
}

func (s *bookingService) find(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) lock(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return booking, nil
}

// reload fetches the committed booking with its relations, falling back to the
// in-transaction copy; the change is already durable either way.
func (s *bookingService) reload(ctx context.Context, fallback *models.Booking) *models.Booking {
	booking, err := s.bookings.FindByID(ctx, fallback.ID)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.WithError(err).WithField("booking_id", fallback.ID).Warn("reload booking after commit")
		}
		return fallback
	}
	return booking
}
