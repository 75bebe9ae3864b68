package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/formatting"
	"github.com/JaimeStill/portal/pkg/pagination"
	"github.com/JaimeStill/portal/pkg/query"
	"github.com/JaimeStill/portal/pkg/repository"
	"github.com/JaimeStill/portal/pkg/storage"
)

const archiveContentType = "text/markdown; charset=utf-8"

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt history repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "history"),
		pagination: pagination,
	}
}

func (r *repo) Handler(admin auth.AdminPolicy) *Handler {
	return NewHandler(r, admin, r.logger, r.pagination)
}

// Record archives the prompt document and inserts the history row.
// The blob is removed again when the insert fails.
func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Entry, error) {
	formData, err := json.Marshal(cmd.FormData)
	if err != nil {
		return nil, fmt.Errorf("marshal form data: %w", err)
	}

	id := uuid.New()
	key := ArchiveKey(cmd.FormType, id)

	if err := r.storage.Upload(ctx, key, strings.NewReader(cmd.Prompt), archiveContentType); err != nil {
		return nil, fmt.Errorf("upload prompt archive: %w", err)
	}

	q := `
		INSERT INTO prompt_history(id, user_id, prompt, form_type, form_data, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, prompt, form_type, form_data, storage_key, created_at`

	args := []any{id, cmd.UserID, cmd.Prompt, cmd.FormType, formData, key}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return repository.QueryOne(ctx, tx, q, args, scanEntry)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt recorded",
		"id", e.ID,
		"form_type", e.FormType,
		"size", formatting.FormatBytes(int64(len(cmd.Prompt)), 1),
	)
	return &e, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Prompt", "FormType")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompt history: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query prompt history: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM prompt_history WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if e.StorageKey != nil {
		if delErr := r.storage.Delete(ctx, *e.StorageKey); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", *e.StorageKey, "error", delErr)
		}
	}

	r.logger.Info("prompt history deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*storage.Blob, error) {
	e, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.StorageKey == nil {
		return nil, ErrNoArchive
	}

	blob, err := r.storage.Download(ctx, *e.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoArchive
		}
		return nil, err
	}
	return blob, nil
}

// ArchiveKey returns the blob key of a prompt document. Form-types that are
// not plain slugs are filed under "unknown".
func ArchiveKey(formType string, id uuid.UUID) string {
	if formType == "" || strings.ContainsFunc(formType, notSlug) {
		formType = "unknown"
	}
	return fmt.Sprintf("prompts/%s/%s.md", formType, id)
}

func notSlug(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_':
		return false
	}
	return true
}
