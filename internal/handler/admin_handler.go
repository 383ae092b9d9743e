package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the /admin views. Every route requires the ADMIN role.
type AdminHandler struct {
	admin    service.AdminService
	bookings service.BookingService
	entries  service.EntryService
	now      func() time.Time
}

func NewAdminHandler(admin service.AdminService, bookings service.BookingService, entries service.EntryService) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings, entries: entries, now: time.Now}
}

func (h *AdminHandler) RegisterRoutes(api *echo.Group, g Guards) {
	a := api.Group("/admin", g.Auth, g.Admin)
	a.GET("/dashboard", h.Dashboard)
	a.GET("/users", h.ListUsers)
	a.GET("/users/export", h.ExportUsers)
	a.GET("/users/:userId/vehicle-entries", h.UserEntries)
	a.GET("/bookings", h.ListBookings)
	a.GET("/bookings/export", h.ExportBookings)
	a.PUT("/bookings/:id/status", h.UpdateBookingStatus)
	a.GET("/logs", h.ListLogs)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.admin.Dashboard(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToDashboardResponse(stats))
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	filter := repository.UserFilter{
		Name:        c.QueryParam("name"),
		Email:       c.QueryParam("email"),
		PlateNumber: c.QueryParam("plateNumber"),
		Role:        models.Role(c.QueryParam("role")),
	}
	page := pagination(c)

	users, total, err := h.admin.ListUsers(c.Request().Context(), filter, page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.NewPage(users, page, total))
}

func (h *AdminHandler) ListBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page := pagination(c)

	bookings, total, err := h.bookings.List(c.Request().Context(), p, models.BookingStatus(c.QueryParam("status")), page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.NewPage(bookings, page, total))
}

func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBookingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.UpdateStatus(c.Request().Context(), p, id, req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *AdminHandler) UserEntries(c echo.Context) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}

	entries, err := h.entries.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	if entries == nil {
		entries = []models.VehicleEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) ListLogs(c echo.Context) error {
	page := pagination(c)

	logs, total, err := h.admin.ListLogs(c.Request().Context(), models.LogAction(c.QueryParam("action")), page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.NewPage(logs, page, total))
}

func (h *AdminHandler) ExportUsers(c echo.Context) error {
	data, err := h.admin.ExportUsers(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return h.csv(c, "users", data)
}

func (h *AdminHandler) ExportBookings(c echo.Context) error {
	data, err := h.admin.ExportBookings(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return h.csv(c, "bookings", data)
}

func (h *AdminHandler) csv(c echo.Context, name string, data []byte) error {
	filename := fmt.Sprintf("%s-%s.csv", name, h.now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, "text/csv", data)
}
