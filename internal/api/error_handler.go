package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/api/handler"
	"github.com/assetdesk/console/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Redirects to the login view (303) when the session is gone or expired.
//   - Maps upstream and domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "fields": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrNotAuthenticated) {
			_ = c.Redirect(http.StatusSeeOther, domain.LoginPath)
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	// Form validation.
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.ErrorBody{Error: "validation failed", Fields: ve.Fields}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorBody{Error: fmt.Sprintf("%v", he.Message)}
	}

	if errors.Is(err, domain.ErrInvalidTransition) {
		return http.StatusConflict, handler.ErrorBody{Error: err.Error()}
	}
	if errors.Is(err, domain.ErrInvalidPayload) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("invalid upstream payload")
		return http.StatusBadGateway, handler.ErrorBody{Error: "Invalid data received"}
	}

	// Upstream failures → deterministic HTTP codes.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case domain.KindValidation:
			return http.StatusBadRequest, handler.ErrorBody{
				Error:  domain.DisplayMessage(err, "Validation failed"),
				Fields: apiErr.Fields,
			}
		case domain.KindNotFound:
			return http.StatusNotFound, handler.ErrorBody{Error: domain.DisplayMessage(err, "Not found")}
		case domain.KindAuth:
			return http.StatusUnauthorized, handler.ErrorBody{Error: domain.DisplayMessage(err, "Authentication failed")}
		case domain.KindForbidden:
			return http.StatusForbidden, handler.ErrorBody{Error: domain.DisplayMessage(err, "Access forbidden")}
		default:
			log.Warn().
				Err(err).
				Str("kind", string(apiErr.Kind)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("upstream failure")
			return http.StatusBadGateway, handler.ErrorBody{Error: domain.DisplayMessage(err, "Asset service unavailable")}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Error: "internal server error"}
}
