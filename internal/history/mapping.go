package history

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/portal/pkg/query"
	"github.com/JaimeStill/portal/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompt_history", "h").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("prompt", "Prompt").
	Project("form_type", "FormType").
	Project("form_data", "FormData").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for history queries.
// Nil fields are ignored.
type Filters struct {
	UserID   *string `json:"userId,omitempty"`
	FormType *string `json:"formType,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("FormType", f.FormType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	if t := values.Get("form_type"); t != "" {
		f.FormType = &t
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	var formData []byte

	err := s.Scan(
		&e.ID,
		&e.UserID,
		&e.Prompt,
		&e.FormType,
		&formData,
		&e.StorageKey,
		&e.CreatedAt,
	)
	if err != nil {
		return e, err
	}

	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &e.FormData); err != nil {
			return e, fmt.Errorf("unmarshal form_data: %w", err)
		}
	}
	if e.FormData == nil {
		e.FormData = map[string]any{}
	}

	return e, nil
}
