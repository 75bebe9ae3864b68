// Package forms implements per-form access settings and the access decision
// applied to form submission endpoints.
package forms

import (
	"time"

	"github.com/google/uuid"
)

// Fallback display values used when no stored setting can be read.
const (
	FallbackName        = "Formulário"
	FallbackDescription = "Descrição não disponível"
)

// Setting is a stored form access configuration, one row per form.
type Setting struct {
	ID           uuid.UUID `json:"id"`
	FormID       string    `json:"formId"`
	FormName     string    `json:"formName"`
	Description  string    `json:"description"`
	IsPublic     bool      `json:"isPublic"`
	RequiresAuth bool      `json:"requiresAuth"`
	Enabled      bool      `json:"isEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EffectiveRequiresAuth reports whether a session is needed to use the form.
// A private form always requires one.
func (s *Setting) EffectiveRequiresAuth() bool {
	return !s.IsPublic || s.RequiresAuth
}

// UpsertCommand carries the mutable fields of a form setting.
type UpsertCommand struct {
	FormName     string `json:"formName"`
	Description  string `json:"description"`
	IsPublic     bool   `json:"isPublic"`
	RequiresAuth bool   `json:"requiresAuth"`
	Enabled      bool   `json:"isEnabled"`
}

// Decision is the outcome of resolving access to a form for a caller.
type Decision struct {
	FormID          string `json:"formId"`
	IsPublic        bool   `json:"isPublic"`
	RequiresAuth    bool   `json:"requiresAuth"`
	IsEnabled       bool   `json:"isEnabled"`
	HasAccess       bool   `json:"hasAccess"`
	FormName        string `json:"formName"`
	FormDescription string `json:"formDescription"`
	// Fallback is set when the decision came from the fail policy
	// rather than a stored setting.
	Fallback bool `json:"fallback"`
}
