package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wavely-app/backend/internal/middleware"
	"github.com/wavely-app/backend/internal/services"
)

// getUserIDFromContext returns the authenticated user ID, or zero when the
// request carried no valid token.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get(middleware.ContextUserIDKey).(uint); ok {
		return id
	}
	return 0
}

// httpError maps the service error taxonomy onto HTTP status codes without
// leaking internals.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidOperation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Conflict")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// pagination pulls page/limit query params with the usual clamping.
func pagination(c echo.Context) (page, limit int) {
	page = intQueryParam(c, "page", 1)
	limit = intQueryParam(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}
