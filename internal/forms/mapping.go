package forms

import (
	"github.com/JaimeStill/portal/pkg/query"
	"github.com/JaimeStill/portal/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "form_settings", "f").
	Project("id", "ID").
	Project("form_id", "FormID").
	Project("form_name", "FormName").
	Project("description", "Description").
	Project("is_public", "IsPublic").
	Project("requires_auth", "RequiresAuth").
	Project("enabled", "Enabled").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "FormName"}

func scanSetting(s repository.Scanner) (Setting, error) {
	var f Setting
	err := s.Scan(
		&f.ID,
		&f.FormID,
		&f.FormName,
		&f.Description,
		&f.IsPublic,
		&f.RequiresAuth,
		&f.Enabled,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
