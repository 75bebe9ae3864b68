package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/pagination"
	"github.com/JaimeStill/portal/pkg/storage"
)

// System defines the public contract for prompt history operations.
type System interface {
	Handler(admin auth.AdminPolicy) *Handler

	Record(ctx context.Context, cmd RecordCommand) (*Entry, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)

	Find(ctx context.Context, id uuid.UUID) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Download returns the archived prompt document. The caller must close Body.
	Download(ctx context.Context, id uuid.UUID) (*storage.Blob, error)
}
