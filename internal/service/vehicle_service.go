package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/google/uuid"
)

type VehicleService interface {
	Create(ctx context.Context, p auth.Principal, plateNumber string) (*models.Vehicle, error)
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, p auth.Principal) ([]models.Vehicle, error)
	Update(ctx context.Context, p auth.Principal, id uuid.UUID, plateNumber string) (*models.Vehicle, error)
	Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

type vehicleService struct {
	vehicles repository.VehicleRepository
	bookings repository.BookingRepository
}

func NewVehicleService(vehicles repository.VehicleRepository, bookings repository.BookingRepository) VehicleService {
	return &vehicleService{vehicles: vehicles, bookings: bookings}
}

func (s *vehicleService) Create(ctx context.Context, p auth.Principal, plateNumber string) (*models.Vehicle, error) {
	plate := models.NormalizePlate(plateNumber)
	if plate == "" {
		return nil, ErrPlateRequired
	}
	if err := s.ensurePlateFree(ctx, plate, uuid.Nil); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{PlateNumber: plate, UserID: p.UserID}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPlateTaken
		}
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *vehicleService) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	if !p.IsAdmin() && !p.Owns(vehicle.UserID) {
		return nil, ErrForbidden
	}
	return vehicle, nil
}

func (s *vehicleService) List(ctx context.Context, p auth.Principal) ([]models.Vehicle, error) {
	return s.vehicles.ListByUser(ctx, p.UserID)
}

func (s *vehicleService) Update(ctx context.Context, p auth.Principal, id uuid.UUID, plateNumber string) (*models.Vehicle, error) {
	vehicle, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	plate := models.NormalizePlate(plateNumber)
	if plate == "" {
		return nil, ErrPlateRequired
	}
	if err := s.ensurePlateFree(ctx, plate, vehicle.ID); err != nil {
		return nil, err
	}

	vehicle.PlateNumber = plate
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPlateTaken
		}
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	vehicle, err := s.owned(ctx, p, id)
	if err != nil {
		return err
	}

	active, err := s.bookings.CountActiveByVehicle(ctx, vehicle.ID)
	if err != nil {
		return fmt.Errorf("count active bookings: %w", err)
	}
	if active > 0 {
		return ErrVehicleInUse
	}

	if err := s.vehicles.Delete(ctx, vehicle.ID); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	return nil
}

// owned loads a vehicle for mutation; only the owner may change it.
func (s *vehicleService) owned(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	if !p.Owns(vehicle.UserID) {
		return nil, ErrForbidden
	}
	return vehicle, nil
}

func (s *vehicleService) ensurePlateFree(ctx context.Context, plate string, self uuid.UUID) error {
	existing, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find vehicle by plate: %w", err)
	}
	if existing.ID != self {
		return ErrPlateTaken
	}
	return nil
}
