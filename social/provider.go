package social

import (
	"context"
	"strings"
)

// Provider defines the capability every social identity provider implements:
// exchange provider-issued credentials for a normalized profile.
type Provider interface {
	// Name returns the provider tag (e.g. "facebook", "google").
	Name() string

	// ProfileByToken exchanges provider credentials for the user's profile,
	// failing when the credentials are invalid or expired.
	ProfileByToken(ctx context.Context, creds Credentials) (*Profile, error)
}

// Credentials carries the provider-specific access tokens submitted by the
// client. AccessTokenSecret is only meaningful for OAuth1-style providers
// (twitter); IdentityToken is the signed identity assertion apple issues.
type Credentials struct {
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret,omitempty"`
	IdentityToken     string `json:"identity_token,omitempty"`
}

// Profile represents normalized user information from a social provider.
type Profile struct {
	ID        string
	Provider  string
	Email     string
	FirstName string
	LastName  string
	Name      string
	Raw       map[string]any
}

// SplitName maps a provider's single display name onto first/last fields
// when the provider does not hand them out separately.
func (p *Profile) SplitName() (string, string) {
	if p.FirstName != "" || p.LastName != "" {
		return p.FirstName, p.LastName
	}

	if p.Name == "" {
		return "", ""
	}

	parts := strings.SplitN(p.Name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
