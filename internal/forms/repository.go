package forms

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/query"
	"github.com/JaimeStill/portal/pkg/repository"
)

type repo struct {
	*Resolver
	db     *sql.DB
	logger *slog.Logger
}

// New creates a form settings repository implementing the System interface.
func New(db *sql.DB, cfg Config, logger *slog.Logger) System {
	r := &repo{
		db:     db,
		logger: logger.With("system", "forms"),
	}
	r.Resolver = NewResolver(r.Find, cfg, logger)
	return r
}

func (r *repo) Handler(admin auth.AdminPolicy) *Handler {
	return NewHandler(r, admin, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Setting, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanSetting)
	if err != nil {
		return nil, fmt.Errorf("query form settings: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, formID string) (*Setting, error) {
	q, args := query.NewBuilder(projection).BuildSingle("FormID", formID)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSetting)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Upsert(ctx context.Context, formID string, cmd UpsertCommand) (*Setting, error) {
	if strings.TrimSpace(formID) == "" || strings.TrimSpace(cmd.FormName) == "" {
		return nil, ErrInvalidForm
	}

	q := `
		INSERT INTO form_settings(form_id, form_name, description, is_public, requires_auth, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (form_id) DO UPDATE SET
			form_name = EXCLUDED.form_name,
			description = EXCLUDED.description,
			is_public = EXCLUDED.is_public,
			requires_auth = EXCLUDED.requires_auth,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
		RETURNING id, form_id, form_name, description, is_public, requires_auth,
				  enabled, created_at, updated_at`

	args := []any{formID, cmd.FormName, cmd.Description, cmd.IsPublic, cmd.RequiresAuth, cmd.Enabled}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Setting, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSetting)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.Invalidate(formID)
	r.logger.Info("form setting saved",
		"form_id", formID,
		"public", s.IsPublic,
		"requires_auth", s.RequiresAuth,
		"enabled", s.Enabled,
	)
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, formID string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM form_settings WHERE form_id = $1", formID)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.Invalidate(formID)
	r.logger.Info("form setting deleted", "form_id", formID)
	return nil
}
