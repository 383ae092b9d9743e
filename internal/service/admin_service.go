package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/gocarina/gocsv"
	"github.com/jinzhu/now"
)

type DashboardStats struct {
	TotalUsers        int64
	TotalVehicles     int64
	TotalSlots        int64
	AvailableSlots    int64
	TotalBookings     int64
	BookingsByStatus  map[models.BookingStatus]int64
	BookingsToday     int64
	BookingsThisMonth int64
	Revenue           int64
	OpenEntries       int64
}

type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, filter repository.UserFilter, page repository.Pagination) ([]models.User, int64, error)
	ListLogs(ctx context.Context, action models.LogAction, page repository.Pagination) ([]models.Log, int64, error)
	ExportUsers(ctx context.Context) ([]byte, error)
	ExportBookings(ctx context.Context) ([]byte, error)
}

type adminService struct {
	users    repository.UserRepository
	vehicles repository.VehicleRepository
	slots    repository.SlotRepository
	bookings repository.BookingRepository
	payments repository.PaymentRepository
	entries  repository.EntryRepository
	logs     repository.LogRepository
	now      func() time.Time
}

func NewAdminService(
	users repository.UserRepository,
	vehicles repository.VehicleRepository,
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	entries repository.EntryRepository,
	logs repository.LogRepository,
) AdminService {
	return &adminService{
		users:    users,
		vehicles: vehicles,
		slots:    slots,
		bookings: bookings,
		payments: payments,
		entries:  entries,
		logs:     logs,
		now:      time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalVehicles, err = s.vehicles.Count(ctx); err != nil {
		return nil, fmt.Errorf("count vehicles: %w", err)
	}
	if stats.TotalSlots, err = s.slots.Count(ctx, false); err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}
	if stats.AvailableSlots, err = s.slots.Count(ctx, true); err != nil {
		return nil, fmt.Errorf("count available slots: %w", err)
	}
	if stats.BookingsByStatus, err = s.bookings.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count bookings by status: %w", err)
	}
	for _, n := range stats.BookingsByStatus {
		stats.TotalBookings += n
	}

	today := now.With(s.now())
	if stats.BookingsToday, err = s.bookings.CountCreatedSince(ctx, today.BeginningOfDay()); err != nil {
		return nil, fmt.Errorf("count bookings today: %w", err)
	}
	if stats.BookingsThisMonth, err = s.bookings.CountCreatedSince(ctx, today.BeginningOfMonth()); err != nil {
		return nil, fmt.Errorf("count bookings this month: %w", err)
	}

	if stats.Revenue, err = s.payments.SumByStatus(ctx, models.PaymentPaid); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	if stats.OpenEntries, err = s.entries.CountOpen(ctx); err != nil {
		return nil, fmt.Errorf("count open entries: %w", err)
	}
	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter repository.UserFilter, page repository.Pagination) ([]models.User, int64, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, 0, ErrInvalidRole
	}
	return s.users.List(ctx, filter, page)
}

func (s *adminService) ListLogs(ctx context.Context, action models.LogAction, page repository.Pagination) ([]models.Log, int64, error) {
	return s.logs.List(ctx, action, page)
}

type userCSVRow struct {
	ID                 string `csv:"id"`
	Name               string `csv:"name"`
	Email              string `csv:"email"`
	Role               string `csv:"role"`
	VerificationStatus string `csv:"verification_status"`
	PlateNumbers       string `csv:"plate_numbers"`
	CreatedAt          string `csv:"created_at"`
}

type bookingCSVRow struct {
	ID          string `csv:"id"`
	UserEmail   string `csv:"user_email"`
	PlateNumber string `csv:"plate_number"`
	SlotNumber  string `csv:"slot_number"`
	StartTime   string `csv:"start_time"`
	EndTime     string `csv:"end_time"`
	Status      string `csv:"status"`
	IsPaid      bool   `csv:"is_paid"`
	Amount      int64  `csv:"amount"`
	CreatedAt   string `csv:"created_at"`
}

func (s *adminService) ExportUsers(ctx context.Context) ([]byte, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	rows := make([]*userCSVRow, 0, len(users))
	for _, u := range users {
		plates := make([]string, len(u.Vehicles))
		for i, v := range u.Vehicles {
			plates[i] = v.PlateNumber
		}
		rows = append(rows, &userCSVRow{
			ID:                 u.ID.String(),
			Name:               u.Name,
			Email:              u.Email,
			Role:               string(u.Role),
			VerificationStatus: string(u.VerificationStatus),
			PlateNumbers:       strings.Join(plates, ";"),
			CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return gocsv.MarshalBytes(&rows)
}

func (s *adminService) ExportBookings(ctx context.Context) ([]byte, error) {
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	rows := make([]*bookingCSVRow, 0, len(bookings))
	for _, b := range bookings {
		row := &bookingCSVRow{
			ID:        b.ID.String(),
			StartTime: b.StartTime.UTC().Format(time.RFC3339),
			EndTime:   b.EndTime.UTC().Format(time.RFC3339),
			Status:    string(b.Status),
			IsPaid:    b.IsPaid,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if b.User != nil {
			row.UserEmail = b.User.Email
		}
		if b.Vehicle != nil {
			row.PlateNumber = b.Vehicle.PlateNumber
		}
		if b.ParkingSlot != nil {
			row.SlotNumber = b.ParkingSlot.SlotNumber
		}
		if b.Payment != nil {
			row.Amount = b.Payment.Amount
		}
		rows = append(rows, row)
	}
	return gocsv.MarshalBytes(&rows)
}
