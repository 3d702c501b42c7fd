// Package oauth wraps the external identity provider behind a small
// interface, constructed once at startup and injected into the auth handler.
package oauth

import "context"

// Identity holds the profile claims extracted from a verified ID token.
// Email may be empty; callers must treat that as an incomplete profile.
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
}

type Provider interface {
	// AuthCodeURL returns the provider's authorization endpoint with the
	// anti-forgery state embedded.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for a verified identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}
