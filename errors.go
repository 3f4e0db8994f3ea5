package accounts

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeNotFound marks a rejected request for a missing entity
	TextCodeNotFound = "account_not_found"
	// TextCodeInvalidField marks a rejected request for a failed semantic check
	TextCodeInvalidField = "account_invalid_field"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned when the submitted password does
// not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("invalid credentials provided", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidField).
	WithCode(errors.CodeBadRequest).
	WithMetadata(map[string]any{"field": "password"})

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password should not be an empty string", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for expired session tokens
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot parse or verify
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// NewNotFound builds the NotFound(field) rejection: the referenced entity
// (user by email or hash, recovery by hash) does not exist.
func NewNotFound(field string) *errors.Error {
	return errors.New("record not found", errors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithCode(errors.CodeNotFound).
		WithMetadata(map[string]any{"field": field})
}

// NewInvalid builds the Invalid(field) rejection: a submitted value failed a
// semantic check (wrong password, unrecognized social provider tag).
func NewInvalid(field string) *errors.Error {
	return errors.New("invalid value for "+field, errors.CategoryValidation).
		WithTextCode(TextCodeInvalidField).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
}

// IsNotFound checks for the NotFound(field) rejection, including storage
// level not-found errors bubbling through the repositories.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// IsInvalid checks for the Invalid(field) rejection
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryValidation
	}
	return false
}

// FailureField extracts the field marker from a rejection, empty when the
// error carries none.
func FailureField(err error) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return ""
	}
	if richErr.Metadata == nil {
		return ""
	}
	if field, ok := richErr.Metadata["field"].(string); ok {
		return field
	}
	return ""
}
