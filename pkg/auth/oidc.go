package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ExternalIdentity is the subset of ID-token claims used to sign a user in.
type ExternalIdentity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IDTokenVerifier validates ID tokens minted by an external identity provider.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*ExternalIdentity, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider configuration for cfg.OIDCIssuer.
// Discovery performs an HTTP request, so ctx should carry a deadline.
func NewOIDCVerifier(ctx context.Context, cfg *Config) (IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, raw string) (*ExternalIdentity, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var ext ExternalIdentity
	if err := token.Claims(&ext); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}
	if ext.Email == "" {
		return nil, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}

	return &ext, nil
}
