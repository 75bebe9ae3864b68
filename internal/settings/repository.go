package settings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/repository"
)

// System defines the public contract for system settings.
type System interface {
	Handler(admin auth.AdminPolicy) *Handler

	List(ctx context.Context) ([]Setting, error)
	Values(ctx context.Context) (Values, error)
	Update(ctx context.Context, values Values) (Values, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a settings repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "settings"),
	}
}

func (r *repo) Handler(admin auth.AdminPolicy) *Handler {
	return NewHandler(r, admin, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Setting, error) {
	q := "SELECT key, value, description, updated_at FROM system_settings ORDER BY key"

	items, err := repository.QueryMany(ctx, r.db, q, nil, scanSetting)
	if err != nil {
		return nil, fmt.Errorf("query system settings: %w", err)
	}
	return items, nil
}

func (r *repo) Values(ctx context.Context) (Values, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	values := make(Values, len(items))
	for _, s := range items {
		values[s.Key] = Decode(s.Value)
	}
	return values, nil
}

// Update writes every known key present in values in a single transaction.
// Unknown keys and null values are skipped.
func (r *repo) Update(ctx context.Context, values Values) (Values, error) {
	encoded := make(map[string]string)
	for key, v := range values {
		if !Known(key) || v == nil {
			continue
		}
		text, err := Encode(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		encoded[key] = text
	}
	if len(encoded) == 0 {
		return nil, ErrEmptyUpdate
	}

	keys := make([]string, 0, len(encoded))
	for k := range encoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := `
		INSERT INTO system_settings(key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, q, k, encoded[k]); err != nil {
				return struct{}{}, fmt.Errorf("update %s: %w", k, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("system settings updated", "keys", keys)
	return r.Values(ctx)
}

func scanSetting(s repository.Scanner) (Setting, error) {
	var st Setting
	err := s.Scan(&st.Key, &st.Value, &st.Description, &st.UpdatedAt)
	return st, err
}
