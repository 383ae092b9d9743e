package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/notify"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/Eursukkul/parking-service/internal/ticket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	msgApproved        = "Booking approved and ticket sent"
	msgApprovedNoPDF   = "Booking approved, but failed to generate PDF"
	msgApprovedNoEmail = "Booking approved, but failed to send email"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(api *echo.Group, g Guards) {
	b := api.Group("/bookings", g.Auth)
	b.POST("", h.CreateBooking)
	b.GET("", h.ListBookings)
	b.GET("/:id", h.GetBooking)
	b.PUT("/:id", h.UpdateStatus)
	b.POST("/:id/cancel", h.CancelBooking)
	b.POST("/:id/complete", h.CompleteBooking)
	b.POST("/:id/pay", h.PayBooking)
	b.POST("/:id/approve", h.ApproveBooking, g.Admin)
	b.GET("/:id/pdf", h.DownloadTicket)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.Create(c.Request().Context(), p, service.CreateBookingInput{
		VehicleID: uuid.MustParse(req.VehicleID),
		SlotID:    uuid.MustParse(req.SlotID),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page := pagination(c)

	bookings, total, err := h.svc.List(c.Request().Context(), p, models.BookingStatus(c.QueryParam("status")), page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.NewPage(bookings, page, total))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBookingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.UpdateStatus(c.Request().Context(), p, id, req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

func (h *BookingHandler) CompleteBooking(c echo.Context) error {
	return h.transition(c, h.svc.Complete)
}

func (h *BookingHandler) PayBooking(c echo.Context) error {
	return h.transition(c, h.svc.Pay)
}

func (h *BookingHandler) ApproveBooking(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	result, err := h.svc.Approve(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}

	switch {
	case result.TicketErr == nil:
		return c.JSON(http.StatusOK, dto.BookingMessageResponse{Message: msgApproved, Booking: result.Booking})
	case errors.Is(result.TicketErr, notify.ErrTicketRender):
		return c.JSON(http.StatusInternalServerError, dto.BookingMessageResponse{Message: msgApprovedNoPDF, Booking: result.Booking})
	default:
		return c.JSON(http.StatusInternalServerError, dto.BookingMessageResponse{Message: msgApprovedNoEmail, Booking: result.Booking})
	}
}

func (h *BookingHandler) DownloadTicket(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	pdf, err := h.svc.Ticket(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+ticket.Filename(&models.Booking{ID: id}))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

type transitionFunc func(ctx context.Context, p auth.Principal, id uuid.UUID) (*models.Booking, error)

func (h *BookingHandler) transition(c echo.Context, fn transitionFunc) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	booking, err := fn(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, booking)
}

func principalAndID(c echo.Context) (auth.Principal, uuid.UUID, error) {
	p, err := principal(c)
	if err != nil {
		return p, uuid.Nil, err
	}
	id, err := uuidParam(c, "id")
	return p, id, err
}
