package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-service/internal/dto"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type EntryHandler struct {
	svc service.EntryService
}

func NewEntryHandler(svc service.EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

func (h *EntryHandler) RegisterRoutes(api *echo.Group, g Guards) {
	e := api.Group("/vehicle-entries", g.Auth)
	e.POST("", h.RegisterEntry)
	e.PUT("/:id/exit", h.RegisterExit)
}

func (h *EntryHandler) RegisterEntry(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.VehicleEntryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := h.svc.RegisterEntry(c.Request().Context(), p, req.PlateNumber)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *EntryHandler) RegisterExit(c echo.Context) error {
	p, id, err := principalAndID(c)
	if err != nil {
		return err
	}

	entry, err := h.svc.RegisterExit(c.Request().Context(), p, id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, entry)
}
