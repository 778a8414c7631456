package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrSessionExpired    = errors.New("session expired")
	ErrInvalidPayload    = errors.New("invalid data received")
)

// Upstream failure classes. An *APIError matches exactly one of them with errors.Is.
var (
	ErrTransport    = errors.New("upstream unreachable")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUpstream     = errors.New("upstream server error")
)

// ErrorKind classifies a failed upstream call.
type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindAuth       ErrorKind = "auth"
	KindForbidden  ErrorKind = "forbidden"
	KindNotFound   ErrorKind = "not_found"
	KindValidation ErrorKind = "validation"
	KindServer     ErrorKind = "server"
)

// APIError describes a failed call to the asset API.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

// KindForStatus maps an HTTP status code to its failure class.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func (e *APIError) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("asset api: %s: %v", e.Kind, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("asset api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("asset api: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUpstream:
		return e.Kind == KindServer
	}
	return false
}

// DisplayMessage returns the message a view should show for err, falling back
// to fallback when the upstream gave nothing usable.
func DisplayMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
