package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

// Guard gates a route group on the profile's session snapshot. Refused
// requests are answered with 303 See Other to the guard's redirect target.
func Guard(name string, guard domain.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := domain.InitialSession()
			if p := ProfileFrom(c); p != nil {
				session = p.Session.Snapshot()
			}

			d := guard(session)
			if !d.Allowed {
				metrics.GuardRedirectsTotal.WithLabelValues(name, d.Redirect).Inc()
				return c.Redirect(http.StatusSeeOther, d.Redirect)
			}
			return next(c)
		}
	}
}
