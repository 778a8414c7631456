package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/api/middleware"
	"github.com/assetdesk/console/internal/core/ports"
)

// ctxProfile returns the profile injected by the Profile middleware. Its
// absence means the route was wired without that middleware.
func ctxProfile(c echo.Context) (*ports.Profile, error) {
	p := middleware.ProfileFrom(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "missing profile")
	}
	return p, nil
}

// bindValid binds the request body into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
