package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/infrastructure/apiclient"
	"github.com/assetdesk/console/pkg/logger"
)

// RequestContext carries the request id into the request context, both for
// outgoing API calls and as a field of the context logger. It must run after
// echo's RequestID middleware.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				return next(c)
			}

			req := c.Request()
			ctx := apiclient.ContextWithRequestID(req.Context(), rid)
			ctx = logger.Into(ctx, logger.From(ctx).With().Str("request_id", rid).Logger())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
