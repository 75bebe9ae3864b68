package users

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("usuário não encontrado")
	ErrDuplicate     = errors.New("usuário já registrado")
	ErrMissingFields = errors.New("todos os campos são obrigatórios")
	ErrInvalidEmail  = errors.New("e-mail em formato inválido")
	ErrInvalidRole   = errors.New("nível de acesso inválido")
)

// Message returns the client-facing text for a users domain error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrDuplicate):
		return "Usuário já registrado"
	case errors.Is(err, ErrMissingFields):
		return "Todos os campos são obrigatórios"
	case errors.Is(err, ErrInvalidEmail):
		return "E-mail em formato inválido"
	case errors.Is(err, ErrInvalidRole):
		return "Nível de acesso inválido"
	default:
		return err.Error()
	}
}

// MapHTTPStatus maps a users domain error to an HTTP status code.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
