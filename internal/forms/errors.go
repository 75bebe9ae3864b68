package forms

import (
	"errors"
	"net/http"
)

// Domain errors for form setting operations.
var (
	ErrNotFound     = errors.New("form setting not found")
	ErrDuplicate    = errors.New("form setting already exists")
	ErrInvalidForm  = errors.New("form id and name are required")
	ErrDisabled     = errors.New("form is disabled")
	ErrAuthRequired = errors.New("form requires authentication")
	ErrUnavailable  = errors.New("form access could not be verified")
)

// Message returns the client-facing text for a gate error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrDisabled):
		return "Este formulário está desativado."
	case errors.Is(err, ErrAuthRequired):
		return "Este formulário requer autenticação."
	default:
		return err.Error()
	}
}

// MapHTTPStatus maps form domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
