package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type VehicleHandler struct {
	svc service.VehicleService
}

func NewVehicleHandler(svc service.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

func (h *VehicleHandler) RegisterRoutes(api *echo.Group, g Guards) {
	v := api.Group("/vehicles", g.Auth)
	v.POST("", h.Create)
	v.GET("", h.List)
	v.GET("/:id", h.Get)
	v.PUT("/:id", h.Update)
	v.DELETE("/:id", h.Delete)
}

func (h *VehicleHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	vehicle, err := h.svc.Create(c.Request().Context(), p, req.PlateNumber)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	vehicles, err := h.svc.List(c.Request().Context(), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

func (h *VehicleHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	vehicle, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.VehicleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	vehicle, err := h.svc.Update(c.Request().Context(), p, id, req.PlateNumber)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(c echo.Context) error {
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
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Vehicle deleted successfully"})
}
