package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotInput describes a new slot or a partial update; nil fields are left unchanged
// (or defaulted on create).
type SlotInput struct {
	SlotNumber      *string
	Type            *models.SlotType
	Size            *models.SlotSize
	VehicleType     *models.VehicleType
	ChargePerHour   *int64
	AvailableSpaces *int
	IsAvailable     *bool
	ParkingName     *string
	Location        *string
}

type SlotService interface {
	Create(ctx context.Context, p auth.Principal, in SlotInput) (*models.ParkingSlot, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, in SlotInput) (*models.ParkingSlot, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error)
	List(ctx context.Context, filter repository.SlotFilter, page repository.Pagination) ([]models.ParkingSlot, int64, error)
	Available(ctx context.Context, start, end time.Time, filter repository.SlotFilter) ([]models.ParkingSlot, error)
}

type slotService struct {
	tx       repository.Transactor
	slots    repository.SlotRepository
	bookings repository.BookingRepository
	audit    auditor
	log      logrus.FieldLogger
}

func NewSlotService(
	tx repository.Transactor,
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	logs repository.LogRepository,
	log logrus.FieldLogger,
) SlotService {
	return &slotService{
		tx:       tx,
		slots:    slots,
		bookings: bookings,
		audit:    auditor{logs: logs},
		log:      log,
	}
}

func (s *slotService) Create(ctx context.Context, p auth.Principal, in SlotInput) (*models.ParkingSlot, error) {
	if in.SlotNumber == nil || strings.TrimSpace(*in.SlotNumber) == "" {
		return nil, newError(KindValidation, "slot number is required")
	}

	slot := &models.ParkingSlot{
		Type:            models.SlotRegular,
		Size:            models.SizeMedium,
		VehicleType:     models.VehicleCar,
		ChargePerHour:   models.DefaultChargePerHour,
		AvailableSpaces: models.DefaultAvailableSpaces,
		IsAvailable:     true,
	}
	applySlotInput(slot, in)
	if err := validateSlot(slot); err != nil {
		return nil, err
	}

	if err := s.ensureSlotNumberFree(ctx, slot.SlotNumber, uuid.Nil); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.slots.Create(ctx, tx, slot); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrDuplicateSlotNumber
			}
			return fmt.Errorf("create slot: %w", err)
		}
		return s.audit.record(ctx, tx, models.ActionSlotCreated, p.UserID, models.JSONMap{
			"slotId":     slot.ID.String(),
			"slotNumber": slot.SlotNumber,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("slot_id", slot.ID).Info("parking slot created")
	return slot, nil
}

func (s *slotService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, in SlotInput) (*models.ParkingSlot, error) {
	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applySlotInput(slot, in)
	if err := validateSlot(slot); err != nil {
		return nil, err
	}
	if in.SlotNumber != nil {
		if err := s.ensureSlotNumberFree(ctx, slot.SlotNumber, slot.ID); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.slots.Update(ctx, tx, slot); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrDuplicateSlotNumber
			}
			return fmt.Errorf("update slot: %w", err)
		}
		return s.audit.record(ctx, tx, models.ActionSlotUpdated, p.UserID, models.JSONMap{
			"slotId":     slot.ID.String(),
			"slotNumber": slot.SlotNumber,
		})
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *slotService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		slot, err := s.slots.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("lock slot: %w", err)
		}

		active, err := s.bookings.CountActiveBySlot(ctx, tx, slot.ID)
		if err != nil {
			return fmt.Errorf("count active bookings: %w", err)
		}
		if active > 0 {
			return ErrSlotInUse
		}

		if err := s.slots.Delete(ctx, tx, slot.ID); err != nil {
			return fmt.Errorf("delete slot: %w", err)
		}
		return s.audit.record(ctx, tx, models.ActionSlotDeleted, p.UserID, models.JSONMap{
			"slotId":     slot.ID.String(),
			"slotNumber": slot.SlotNumber,
		})
	})
}

func (s *slotService) Get(ctx context.Context, id uuid.UUID) (*models.ParkingSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return slot, nil
}

func (s *slotService) List(ctx context.Context, filter repository.SlotFilter, page repository.Pagination) ([]models.ParkingSlot, int64, error) {
	return s.slots.List(ctx, filter, page)
}

func (s *slotService) Available(ctx context.Context, start, end time.Time, filter repository.SlotFilter) ([]models.ParkingSlot, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	return s.slots.ListAvailable(ctx, start, end, filter)
}

func (s *slotService) ensureSlotNumberFree(ctx context.Context, slotNumber string, self uuid.UUID) error {
	existing, err := s.slots.FindBySlotNumber(ctx, slotNumber)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find slot by number: %w", err)
	}
	if existing.ID != self {
		return ErrDuplicateSlotNumber
	}
	return nil
}

func applySlotInput(slot *models.ParkingSlot, in SlotInput) {
	if in.SlotNumber != nil {
		slot.SlotNumber = strings.TrimSpace(*in.SlotNumber)
	}
	if in.Type != nil {
		slot.Type = *in.Type
	}
	if in.Size != nil {
		slot.Size = *in.Size
	}
	if in.VehicleType != nil {
		slot.VehicleType = *in.VehicleType
	}
	if in.ChargePerHour != nil {
		slot.ChargePerHour = *in.ChargePerHour
	}
	if in.AvailableSpaces != nil {
		slot.AvailableSpaces = *in.AvailableSpaces
	}
	if in.IsAvailable != nil {
		slot.IsAvailable = *in.IsAvailable
	}
	if in.ParkingName != nil {
		slot.ParkingName = in.ParkingName
	}
	if in.Location != nil {
		slot.Location = in.Location
	}
}

func validateSlot(slot *models.ParkingSlot) error {
	if slot.SlotNumber == "" {
		return newError(KindValidation, "slot number is required")
	}
	if !slot.Type.IsValid() || !slot.Size.IsValid() || !slot.VehicleType.IsValid() {
		return ErrInvalidSlotEnum
	}
	if slot.ChargePerHour < 0 || slot.AvailableSpaces < 0 {
		return ErrNegativeValue
	}
	return nil
}
