package social

import "github.com/goliatone/go-errors"

const (
	TextCodeUnknownProvider  = "social_unknown_provider"
	TextCodeTokenExchange    = "social_token_exchange_failed"
	TextCodeInvalidAssertion = "social_invalid_assertion"
)

// ErrUnknownProvider is returned when a requested provider tag is not
// configured; it carries the Invalid(socialType) rejection marker.
var ErrUnknownProvider = errors.New("unknown social provider", errors.CategoryValidation).
	WithTextCode(TextCodeUnknownProvider).
	WithCode(errors.CodeBadRequest).
	WithMetadata(map[string]any{"field": "socialType"})

// ErrTokenExchangeFailed is returned when a provider rejects the submitted
// access token.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExchange).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidAssertion is returned when a signed identity assertion cannot be
// verified (apple identity tokens).
var ErrInvalidAssertion = errors.New("invalid identity assertion", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidAssertion).
	WithCode(errors.CodeUnauthorized)
