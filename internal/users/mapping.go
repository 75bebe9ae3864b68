package users

import (
	"net/url"

	"github.com/JaimeStill/portal/pkg/query"
	"github.com/JaimeStill/portal/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("email", "Email").
	Project("name", "Name").
	Project("role", "Role").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

// Filters contains optional filtering criteria for user queries.
type Filters struct {
	Role   *string `json:"role,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Role", f.Role).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if r := values.Get("role"); r != "" {
		f.Role = &r
	}

	switch values.Get("active") {
	case "true":
		active := true
		f.Active = &active
	case "false":
		active := false
		f.Active = &active
	}

	return f
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
