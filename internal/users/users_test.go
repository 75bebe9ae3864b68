package users_test

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/JaimeStill/portal/internal/users"
)

func TestCreateCommandValidate(t *testing.T) {
	tests := []struct {
		name     string
		cmd      users.CreateCommand
		wantErr  error
		wantRole string
	}{
		{
			name:     "defaults role",
			cmd:      users.CreateCommand{Name: "Ana", Email: " Ana@Example.com ", Password: "x"},
			wantRole: users.RoleUser,
		},
		{
			name:     "manager",
			cmd:      users.CreateCommand{Name: "Ana", Email: "ana@example.com", Password: "x", Role: "manager"},
			wantRole: users.RoleManager,
		},
		{
			name:    "missing password",
			cmd:     users.CreateCommand{Name: "Ana", Email: "ana@example.com"},
			wantErr: users.ErrMissingFields,
		},
		{
			name:    "blank name",
			cmd:     users.CreateCommand{Name: "  ", Email: "ana@example.com", Password: "x"},
			wantErr: users.ErrMissingFields,
		},
		{
			name:    "bad email",
			cmd:     users.CreateCommand{Name: "Ana", Email: "ana@example", Password: "x"},
			wantErr: users.ErrInvalidEmail,
		},
		{
			name:    "bad role",
			cmd:     users.CreateCommand{Name: "Ana", Email: "ana@example.com", Password: "x", Role: "owner"},
			wantErr: users.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if err == nil && tt.cmd.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", tt.cmd.Role, tt.wantRole)
			}
		})
	}

	cmd := users.CreateCommand{Name: "Ana", Email: " Ana@Example.com ", Password: "x"}
	cmd.Validate()
	if cmd.Email != "ana@example.com" {
		t.Errorf("email = %q, want normalized", cmd.Email)
	}
}

func TestUpdateCommandValidate(t *testing.T) {
	if err := (&users.UpdateCommand{Name: "Ana", Role: "admin"}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (&users.UpdateCommand{Name: "Ana"}).Validate(); !errors.Is(err, users.ErrInvalidRole) {
		t.Errorf("Validate() = %v, want ErrInvalidRole", err)
	}
	if err := (&users.UpdateCommand{Role: "user"}).Validate(); !errors.Is(err, users.ErrMissingFields) {
		t.Errorf("Validate() = %v, want ErrMissingFields", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{users.ErrNotFound, 404},
		{users.ErrDuplicate, 409},
		{users.ErrMissingFields, 400},
		{users.ErrInvalidEmail, 400},
		{users.ErrInvalidRole, 400},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		if got := users.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{users.ErrDuplicate, "Usuário já registrado"},
		{fmt.Errorf("create: %w", users.ErrInvalidEmail), "E-mail em formato inválido"},
		{users.ErrMissingFields, "Todos os campos são obrigatórios"},
		{users.ErrInvalidRole, "Nível de acesso inválido"},
		{users.ErrNotFound, "usuário não encontrado"},
	}

	for _, tt := range tests {
		if got := users.Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFiltersFromQuery(t *testing.T) {
	f := users.FiltersFromQuery(url.Values{"role": {"admin"}, "active": {"false"}})
	if f.Role == nil || *f.Role != "admin" {
		t.Errorf("role = %v", f.Role)
	}
	if f.Active == nil || *f.Active {
		t.Errorf("active = %v", f.Active)
	}

	f = users.FiltersFromQuery(url.Values{"active": {"maybe"}})
	if f.Role != nil || f.Active != nil {
		t.Errorf("filters = %+v, want empty", f)
	}
}
