package forms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/JaimeStill/portal/internal/auth"
	"github.com/JaimeStill/portal/pkg/handlers"
)

// Finder reads a single form setting by form id.
type Finder func(ctx context.Context, formID string) (*Setting, error)

// Resolver computes access decisions from stored settings.
// Successful lookups are cached; lookup failures never surface to callers.
type Resolver struct {
	find   Finder
	cache  *expirable.LRU[string, Setting]
	cfg    Config
	logger *slog.Logger
}

// NewResolver creates a Resolver over find. cfg must be finalized.
func NewResolver(find Finder, cfg Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		find:   find,
		cache:  expirable.NewLRU[string, Setting](cfg.CacheSize, nil, cfg.CacheTTLDuration()),
		cfg:    cfg,
		logger: logger.With("system", "forms", "component", "resolver"),
	}
}

// Resolve returns the access decision for formID. session may be nil.
func (r *Resolver) Resolve(ctx context.Context, formID string, session *auth.Session) Decision {
	if s, ok := r.cache.Get(formID); ok {
		return Decide(&s, session != nil, r.cfg.Enforced())
	}

	s, err := r.find(ctx, formID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Warn("form setting missing, applying fail policy", "form_id", formID, "policy", r.cfg.FailPolicy)
		} else {
			r.logger.Error("form setting lookup failed, applying fail policy", "form_id", formID, "policy", r.cfg.FailPolicy, "error", err)
		}
		return Fallback(formID, r.cfg.FailPolicy)
	}

	r.cache.Add(formID, *s)
	return Decide(s, session != nil, r.cfg.Enforced())
}

// Invalidate drops any cached setting for formID.
func (r *Resolver) Invalidate(formID string) {
	r.cache.Remove(formID)
}

// Gate wraps a submission handler with the access decision for formID.
// Disabled forms respond 403, forms requiring a missing session respond 401,
// and a closed fail policy responds 503.
func (r *Resolver) Gate(formID string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		session := auth.FromContext(req.Context())
		d := r.Resolve(req.Context(), formID, session)

		if d.HasAccess {
			next(w, req)
			return
		}

		var err error
		switch {
		case d.Fallback:
			err = ErrUnavailable
		case !d.IsEnabled:
			err = ErrDisabled
		default:
			err = ErrAuthRequired
		}
		handlers.RespondMessage(w, MapHTTPStatus(err), Message(err))
	}
}

// Decide computes the access decision for a stored setting.
// When enforce is false the stored public and auth flags are ignored.
func Decide(s *Setting, authenticated, enforce bool) Decision {
	d := Decision{
		FormID:          s.FormID,
		IsPublic:        s.IsPublic,
		RequiresAuth:    s.EffectiveRequiresAuth(),
		IsEnabled:       s.Enabled,
		FormName:        s.FormName,
		FormDescription: s.Description,
	}

	if !enforce {
		d.IsPublic = true
		d.RequiresAuth = false
	}
	if d.FormName == "" {
		d.FormName = FallbackName
	}
	if d.FormDescription == "" {
		d.FormDescription = FallbackDescription
	}

	d.HasAccess = d.IsEnabled && (!d.RequiresAuth || authenticated)
	return d
}

// Fallback returns the decision used when no setting could be read.
func Fallback(formID, policy string) Decision {
	if policy == FailClosed {
		return Decision{
			FormID:          formID,
			IsPublic:        false,
			RequiresAuth:    true,
			IsEnabled:       false,
			HasAccess:       false,
			FormName:        FallbackName,
			FormDescription: FallbackDescription,
			Fallback:        true,
		}
	}
	return Decision{
		FormID:          formID,
		IsPublic:        true,
		RequiresAuth:    false,
		IsEnabled:       true,
		HasAccess:       true,
		FormName:        FallbackName,
		FormDescription: FallbackDescription,
		Fallback:        true,
	}
}
