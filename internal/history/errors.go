package history

import (
	"errors"
	"net/http"
)

// Domain errors for prompt history operations.
var (
	ErrNotFound  = errors.New("prompt history entry not found")
	ErrDuplicate = errors.New("prompt history entry already exists")
	ErrNoArchive = errors.New("prompt history entry has no archived document")
)

// MapHTTPStatus maps history domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoArchive) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
