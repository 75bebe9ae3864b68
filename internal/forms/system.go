package forms

import (
	"context"
	"net/http"

	"github.com/JaimeStill/portal/internal/auth"
)

// System defines the public contract for form setting operations.
type System interface {
	Handler(admin auth.AdminPolicy) *Handler

	Resolve(ctx context.Context, formID string, session *auth.Session) Decision
	Gate(formID string, next http.HandlerFunc) http.HandlerFunc

	List(ctx context.Context) ([]Setting, error)
	Find(ctx context.Context, formID string) (*Setting, error)
	Upsert(ctx context.Context, formID string, cmd UpsertCommand) (*Setting, error)
	Delete(ctx context.Context, formID string) error
}
