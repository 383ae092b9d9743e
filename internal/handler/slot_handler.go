package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/models"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type SlotHandler struct {
	svc service.SlotService
}

func NewSlotHandler(svc service.SlotService) *SlotHandler {
	return &SlotHandler{svc: svc}
}

func (h *SlotHandler) RegisterRoutes(api *echo.Group, g Guards) {
	s := api.Group("/parking-slots", g.Auth)
	s.GET("", h.List)
	s.GET("/available", h.Available)
	s.GET("/:id", h.Get)
	s.POST("", h.Create, g.Admin)
	s.PUT("/:id", h.Update, g.Admin)
	s.DELETE("/:id", h.Delete, g.Admin)
}

func (h *SlotHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slot, err := h.svc.Create(c.Request().Context(), p, service.SlotInput{
		SlotNumber:      req.SlotNumber,
		Type:            req.Type,
		Size:            req.Size,
		VehicleType:     req.VehicleType,
		ChargePerHour:   req.ChargePerHour,
		AvailableSpaces: req.AvailableSpaces,
		IsAvailable:     req.IsAvailable,
		ParkingName:     req.ParkingName,
		Location:        req.Location,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *SlotHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slot, err := h.svc.Update(c.Request().Context(), p, id, service.SlotInput{
		SlotNumber:      req.SlotNumber,
		Type:            req.Type,
		Size:            req.Size,
		VehicleType:     req.VehicleType,
		ChargePerHour:   req.ChargePerHour,
		AvailableSpaces: req.AvailableSpaces,
		IsAvailable:     req.IsAvailable,
		ParkingName:     req.ParkingName,
		Location:        req.Location,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), p, id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Parking slot deleted successfully"})
}

func (h *SlotHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	slot, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) List(c echo.Context) error {
	filter, err := slotFilter(c)
	if err != nil {
		return err
	}
	page := pagination(c)

	slots, total, err := h.svc.List(c.Request().Context(), filter, page)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.NewPage(slots, page, total))
}

func (h *SlotHandler) Available(c echo.Context) error {
	start, errStart := time.Parse(time.RFC3339, c.QueryParam("startTime"))
	end, errEnd := time.Parse(time.RFC3339, c.QueryParam("endTime"))
	if errStart != nil || errEnd != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "startTime and endTime must be RFC 3339 timestamps")
	}

	filter, err := slotFilter(c)
	if err != nil {
		return err
	}

	slots, err := h.svc.Available(c.Request().Context(), start, end, filter)
	if err != nil {
		return toHTTPError(err)
	}
	if slots == nil {
		slots = []models.ParkingSlot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func slotFilter(c echo.Context) (repository.SlotFilter, error) {
	f := repository.SlotFilter{
		Type:        models.SlotType(c.QueryParam("type")),
		Size:        models.SlotSize(c.QueryParam("size")),
		VehicleType: models.VehicleType(c.QueryParam("vehicleType")),
		SlotNumber:  c.QueryParam("slotNumber"),
		ParkingName: c.QueryParam("parkingName"),
		Location:    c.QueryParam("location"),
	}
	if raw := c.QueryParam("isAvailable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "isAvailable must be true or false")
		}
		f.IsAvailable = &v
	}
	return f, nil
}
