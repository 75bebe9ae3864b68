// Package settings stores system-wide key/value settings. Values are kept as
// text and decoded to booleans, numbers, or strings on read.
package settings

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Known setting keys. Updates for any other key are ignored.
const (
	KeyDomain               = "domain"
	KeyWebhookURL           = "webhook_url"
	KeyNotificationEmail    = "notification_email"
	KeyNotificationsEnabled = "notifications_enabled"
	KeySessionTimeout       = "session_timeout"
	KeyDarkTheme            = "dark_theme"
)

// Keys lists the known setting keys in display order.
var Keys = []string{
	KeyDomain,
	KeyWebhookURL,
	KeyNotificationEmail,
	KeyNotificationsEnabled,
	KeySessionTimeout,
	KeyDarkTheme,
}

var (
	ErrInvalidValue = errors.New("valor de configuração inválido")
	ErrEmptyUpdate  = errors.New("nenhuma configuração informada")
)

// Setting is a stored row.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Values maps setting keys to decoded values.
type Values map[string]any

// Response is the settings read model.
type Response struct {
	Settings Values `json:"settings"`
}

// UpdateResponse reports a settings update.
type UpdateResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Settings Values `json:"settings"`
}

// Decode converts stored text to true, false, a float64, or the text itself.
// Blank text stays a string.
func Decode(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.TrimSpace(value) != "" {
		if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return n
		}
	}
	return value
}

// Encode converts a JSON value to its stored text form.
// Objects and arrays are rejected.
func Encode(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

// Known reports whether key is a known setting key.
func Known(key string) bool {
	return slices.Contains(Keys, key)
}

// MapHTTPStatus maps a settings error to an HTTP status code.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidValue) || errors.Is(err, ErrEmptyUpdate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
