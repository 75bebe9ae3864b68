// Package users manages portal accounts.
package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/pagination"
)

// System defines the public contract for user management.
type System interface {
	Handler(admin auth.AdminPolicy) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[User], error)

	Find(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, cmd CreateCommand) (*User, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
