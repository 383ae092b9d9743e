package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
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

type EntryService interface {
	RegisterEntry(ctx context.Context, p auth.Principal, plateNumber string) (*models.VehicleEntry, error)
	RegisterExit(ctx context.Context, p auth.Principal, entryID uuid.UUID) (*models.VehicleEntry, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.VehicleEntry, error)
}

type entryService struct {
	tx       repository.Transactor
	entries  repository.EntryRepository
	vehicles repository.VehicleRepository
	audit    auditor
	log      logrus.FieldLogger
	now      func() time.Time
	codes    func() (string, error)
}

func NewEntryService(
	tx repository.Transactor,
	entries repository.EntryRepository,
	vehicles repository.VehicleRepository,
	logs repository.LogRepository,
	log logrus.FieldLogger,
) EntryService {
	return &entryService{
		tx:       tx,
		entries:  entries,
		vehicles: vehicles,
		audit:    auditor{logs: logs},
		log:      log,
		now:      time.Now,
		codes:    newParkingCode,
	}
}

func (s *entryService) RegisterEntry(ctx context.Context, p auth.Principal, plateNumber string) (*models.VehicleEntry, error) {
	plate := models.NormalizePlate(plateNumber)
	if plate == "" {
		return nil, ErrPlateRequired
	}

	vehicle, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle by plate: %w", err)
	}

	code, err := s.codes()
	if err != nil {
		return nil, fmt.Errorf("generate parking code: %w", err)
	}

	entry := &models.VehicleEntry{
		PlateNumber:   vehicle.PlateNumber,
		ParkingCode:   code,
		EntryDateTime: s.now(),
		VehicleID:     vehicle.ID,
		UserID:        vehicle.UserID,
	}

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.entries.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("create vehicle entry: %w", err)
		}
		return s.audit.record(ctx, tx, models.ActionVehicleEntryRegistered, p.UserID, models.JSONMap{
			"entryId":     entry.ID.String(),
			"plateNumber": entry.PlateNumber,
			"parkingCode": entry.ParkingCode,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"entry_id": entry.ID, "plate": entry.PlateNumber}).Info("vehicle entered")
	return entry, nil
}

func (s *entryService) RegisterExit(ctx context.Context, p auth.Principal, entryID uuid.UUID) (*models.VehicleEntry, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("find vehicle entry: %w", err)
	}
	if entry.HasExited() {
		return nil, ErrAlreadyExited
	}

	exitAt := s.now()
	amount := EntryCharge(entry.EntryDateTime, exitAt)

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		closed, err := s.entries.CloseExit(ctx, tx, entry.ID, exitAt, amount)
		if err != nil {
			return fmt.Errorf("record exit: %w", err)
		}
		if !closed {
			return ErrAlreadyExited
		}
		return s.audit.record(ctx, tx, models.ActionVehicleExitUpdated, p.UserID, models.JSONMap{
			"entryId":       entry.ID.String(),
			"plateNumber":   entry.PlateNumber,
			"chargedAmount": amount,
		})
	})
	if err != nil {
		return nil, err
	}

	entry.ExitDateTime = &exitAt
	entry.ChargedAmount = amount
	return entry, nil
}

func (s *entryService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.VehicleEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}

// newParkingCode returns 8 upper-case hex characters from 4 random bytes.
func newParkingCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
