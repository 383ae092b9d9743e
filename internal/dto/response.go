package dto

import (
	"time"

	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
)

// Page is the paginated list envelope.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	TotalCount int64 `json:"totalCount"`
}

func NewPage[T any](items []T, p repository.Pagination, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Page[T]{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
		TotalCount: total,
	}
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type BookingMessageResponse struct {
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

type DashboardResponse struct {
	TotalUsers         int64                          `json:"totalUsers"`
	TotalVehicles      int64                          `json:"totalVehicles"`
	TotalSlots         int64                          `json:"totalSlots"`
	AvailableSlots     int64                          `json:"availableSlots"`
	TotalBookings      int64                          `json:"totalBookings"`
	BookingsByStatus   map[models.BookingStatus]int64 `json:"bookingsByStatus"`
	BookingsToday      int64                          `json:"bookingsToday"`
	BookingsThisMonth  int64                          `json:"bookingsThisMonth"`
	Revenue            int64                          `json:"revenue"`
	OpenVehicleEntries int64                          `json:"openVehicleEntries"`
}

func ToDashboardResponse(s *service.DashboardStats) DashboardResponse {
	byStatus := make(map[models.BookingStatus]int64, 5)
	for _, st := range []models.BookingStatus{
		models.BookingPending, models.BookingApproved, models.BookingCompleted,
		models.BookingCancelled, models.BookingRejected,
	} {
		byStatus[st] = s.BookingsByStatus[st]
	}
	return DashboardResponse{
		TotalUsers:         s.TotalUsers,
		TotalVehicles:      s.TotalVehicles,
		TotalSlots:         s.TotalSlots,
		AvailableSlots:     s.AvailableSlots,
		TotalBookings:      s.TotalBookings,
		BookingsByStatus:   byStatus,
		BookingsToday:      s.BookingsToday,
		BookingsThisMonth:  s.BookingsThisMonth,
		Revenue:            s.Revenue,
		OpenVehicleEntries: s.OpenEntries,
	}
}
