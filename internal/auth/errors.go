package auth

import (
	"errors"
	"net/http"
)

// Domain errors for authentication operations.
var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnsupported        = errors.New("operation not supported by provider")
	ErrForbidden          = errors.New("permission denied: super admin required")
	ErrUnknownProvider    = errors.New("unknown auth provider")
)

// forbiddenMessage is the client-facing text for ErrForbidden.
const forbiddenMessage = "Permissão negada. Apenas super administradores podem acessar esta API."

// MapHTTPStatus maps auth domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoSession) || errors.Is(err, ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrUnsupported) {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
