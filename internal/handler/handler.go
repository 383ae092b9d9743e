package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/parking-service/internal/auth"
	"github.com/Eursukkul/parking-service/internal/middleware"
	"github.com/Eursukkul/parking-service/internal/repository"
	"github.com/Eursukkul/parking-service/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Guards are the route middlewares shared by every handler.
type Guards struct {
	Auth  echo.MiddlewareFunc
	Admin echo.MiddlewareFunc
}

// toHTTPError maps a classified service error to its status code. Unclassified
// errors pass through and surface as 500.
func toHTTPError(err error) error {
	switch service.KindOf(err) {
	case service.KindValidation, service.KindConflict:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case service.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case service.KindForbidden:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case service.KindUnauthorized:
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return err
	}
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

func pagination(c echo.Context) repository.Pagination {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.NewPagination(page, limit)
}
