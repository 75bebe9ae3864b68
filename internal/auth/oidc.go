package auth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
)

type oidcClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type oidcProvider struct {
	issuer   string
	clientID string
	logger   *slog.Logger

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// NewOIDC creates a provider that accepts ID tokens issued by an external
// OpenID Connect identity provider. Discovery runs on first use.
func NewOIDC(cfg *Config, logger *slog.Logger) Provider {
	return &oidcProvider{
		issuer:   cfg.OIDCIssuer,
		clientID: cfg.OIDCClientID,
		logger:   logger.With("system", "auth", "provider", ProviderOIDC),
	}
}

func (o *oidcProvider) Name() string {
	return ProviderOIDC
}

func (o *oidcProvider) Session(ctx context.Context, token string) (*Session, error) {
	v, err := o.idVerifier(ctx)
	if err != nil {
		return nil, err
	}

	idToken, err := v.Verify(ctx, token)
	if err != nil {
		return nil, ErrNoSession
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}

	role := "user"
	if slices.Contains(claims.Roles, "admin") {
		role = "admin"
	}

	return &Session{
		Token:     token,
		UserID:    idToken.Subject,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: idToken.Expiry,
	}, nil
}

// SignIn is handled by the identity provider's own login flow.
func (o *oidcProvider) SignIn(context.Context, string, string) (*Session, error) {
	return nil, ErrUnsupported
}

// SignOut is a no-op; ID tokens are stateless and expire on their own.
func (o *oidcProvider) SignOut(context.Context, string) error {
	return nil
}

func (o *oidcProvider) idVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.verifier != nil {
		return o.verifier, nil
	}

	p, err := oidc.NewProvider(ctx, o.issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery %s: %w", o.issuer, err)
	}

	o.verifier = p.Verifier(&oidc.Config{ClientID: o.clientID})
	o.logger.Info("oidc provider discovered", "issuer", o.issuer)
	return o.verifier, nil
}
