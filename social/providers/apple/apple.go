package apple

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-accounts/social"
)

const (
	defaultJWKSURL = "https://appleid.apple.com/auth/keys"
	defaultIssuer  = "https://appleid.apple.com"
)

// Config holds Apple adapter configuration.
type Config struct {
	// ClientID is the app's bundle or services id, validated against the
	// identity token audience when set.
	ClientID string

	JWKSURL string
	Issuer  string

	// JWKS overrides the fetched key set; tests inject given keys here.
	JWKS *keyfunc.JWKS
}

// Provider implements social.Provider for Sign in with Apple. Apple does not
// expose a userinfo endpoint; the profile is carried inside the signed
// identity token, verified against Apple's JWK set.
type Provider struct {
	config Config

	mu   sync.Mutex // guards jwks
	jwks *keyfunc.JWKS
}

// New creates a new Apple provider. The JWK set is fetched lazily so
// constructing the adapter does not require network access.
func New(cfg Config) *Provider {
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}

	return &Provider{
		config: cfg,
		jwks:   cfg.JWKS,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string {
	return "apple"
}

// ProfileByToken implements social.Provider.
func (p *Provider) ProfileByToken(ctx context.Context, creds social.Credentials) (*social.Profile, error) {
	raw := creds.IdentityToken
	if raw == "" {
		raw = creds.AccessToken
	}
	if raw == "" {
		return nil, providerError("verify", 0, "missing_token", "no identity token provided", nil, nil)
	}

	jwks, err := p.keySet(ctx)
	if err != nil {
		return nil, providerError("jwks", 0, "jwks_unavailable", "failed to fetch apple key set", err, nil)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithIssuer(p.config.Issuer),
		jwt.WithValidMethods([]string{"RS256"}),
	}
	if p.config.ClientID != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(p.config.ClientID))
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, jwks.Keyfunc, parserOptions...)
	if err != nil {
		return nil, providerError("verify", 0, "invalid_token", "identity token failed verification", err, nil)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, providerError("verify", 0, "invalid_token", "identity token carried no subject", nil, nil)
	}

	// Apple only includes names in the first authorization response, never
	// in the identity token; callers supply fallback names out of band.
	return &social.Profile{
		ID:       claims.Subject,
		Provider: "apple",
		Email:    claims.Email,
		Raw: map[string]any{
			"sub":            claims.Subject,
			"email":          claims.Email,
			"email_verified": claims.EmailVerified,
		},
	}, nil
}

func (p *Provider) keySet(ctx context.Context) (*keyfunc.JWKS, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.jwks != nil {
		return p.jwks, nil
	}

	jwks, err := keyfunc.Get(p.config.JWKSURL, keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of apple JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}

	p.jwks = jwks
	return jwks, nil
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified any    `json:"email_verified,omitempty"` // apple sends bool or "true"
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *social.ProviderError {
	return &social.ProviderError{
		Provider:    "apple",
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
