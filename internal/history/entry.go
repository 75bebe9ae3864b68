// Package history records generated prompts and archives each prompt
// document to blob storage for later download.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a recorded prompt generation.
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *string        `json:"userId"`
	Prompt     string         `json:"prompt"`
	FormType   string         `json:"formType"`
	FormData   map[string]any `json:"formData"`
	StorageKey *string        `json:"storageKey"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// RecordCommand carries a prompt generation to record.
// UserID is nil for anonymous submissions.
type RecordCommand struct {
	UserID   *string
	FormType string
	Prompt   string
	FormData map[string]any
}
