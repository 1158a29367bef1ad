// Package oidc accepts admin tokens issued by an external Keycloak realm.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/middleware"
)

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// Issuer builds the realm issuer URL. A blank realm means URL already is the issuer.
func Issuer(kc config.KeycloakConfig) string {
	base := strings.TrimRight(kc.URL, "/")
	if kc.Realm == "" {
		return base
	}
	return base + "/realms/" + kc.Realm
}

// NewKeycloakVerifier discovers the configured realm.
func NewKeycloakVerifier(ctx context.Context, kc config.KeycloakConfig) (*Verifier, error) {
	if kc.URL == "" || kc.ClientID == "" {
		return nil, errors.New("keycloak url and client id are required")
	}
	return NewVerifier(ctx, Issuer(kc), kc.ClientID)
}

// Verify verifies the provided raw ID token using the provided context and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
