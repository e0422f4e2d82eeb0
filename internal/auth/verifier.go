// Package auth verifies the identity-provider token on every request and
// resolves it to a user record. The rest of the system trusts the user id it
// puts in the request context without re-verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is what the provider asserts about the caller.
type Identity struct {
	Subject  string
	Name     string
	PhotoURL string
}

// Verifier validates a raw bearer token and extracts the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// OIDCVerifier validates ID tokens issued by a real OIDC provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuer and prepares token
// verification for the given client id.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}

	return Identity{
		Subject:  idToken.Subject,
		Name:     claims.Name,
		PhotoURL: claims.Picture,
	}, nil
}

// StaticVerifier accepts "test:<subject>[:<name>]" tokens. Used by
// --no-oidc mode and tests; never wire it to a public listener.
type StaticVerifier struct{}

func (StaticVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	parts := strings.SplitN(rawToken, ":", 3)
	if len(parts) < 2 || parts[0] != "test" || parts[1] == "" {
		return Identity{}, ErrInvalidToken
	}
	ident := Identity{Subject: parts[1], Name: "Test User"}
	if len(parts) == 3 && parts[2] != "" {
		ident.Name = parts[2]
	}
	return ident, nil
}
