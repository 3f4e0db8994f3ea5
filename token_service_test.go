package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts"
)

// MockIdentity implements accounts.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements accounts.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")
	tokenExpiration := 24
	issuer := "test-issuer"
	audience := jwt.ClaimStrings{"test-audience"}

	t.Run("creates token service with logger", func(t *testing.T) {
		logger := &MockLogger{}

		service := accounts.NewTokenService(signingKey, tokenExpiration, issuer, audience, logger)

		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := accounts.NewTokenService(signingKey, tokenExpiration, issuer, audience, nil)

		assert.NotNil(t, service)
	})
}

func TestTokenServiceGenerate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	audience := jwt.ClaimStrings{"test-audience"}

	service := accounts.NewTokenService(signingKey, 24, "test-issuer", audience, nil)

	t.Run("generates valid JWT token", func(t *testing.T) {
		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")
		identity.On("Role").Return("admin")

		tokenString, err := service.Generate(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &accounts.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*accounts.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "admin", claims.Role())
		assert.Equal(t, "test-issuer", claims.Issuer)
		assert.Equal(t, audience, claims.Audience)
		assert.NotEmpty(t, claims.RegisteredClaims.ID)
		assert.NotNil(t, claims.RegisteredClaims.IssuedAt)
		assert.NotNil(t, claims.RegisteredClaims.ExpiresAt)

		identity.AssertExpectations(t)
	})
}

func TestTokenServiceSignClaims(t *testing.T) {
	service := accounts.NewTokenService([]byte("test-signing-key"), 24, "test-issuer", nil, nil)

	t.Run("rejects nil claims", func(t *testing.T) {
		_, err := service.SignClaims(nil)
		assert.Error(t, err)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	audience := jwt.ClaimStrings{"test-audience"}

	service := accounts.NewTokenService(signingKey, 24, "test-issuer", audience, nil)

	t.Run("round trips generated tokens", func(t *testing.T) {
		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")
		identity.On("Role").Return("user")

		tokenString, err := service.Generate(identity)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)

		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "user", claims.Role())
		assert.True(t, claims.Expires().After(time.Now()))
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		now := time.Now()
		expired := &accounts.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   "user-123",
				Audience:  audience,
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			},
		}

		tokenString, err := service.SignClaims(expired)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)

		require.Error(t, err)
		assert.ErrorIs(t, err, accounts.ErrTokenExpired)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		assert.Error(t, err)
	})

	t.Run("rejects tokens signed with a different key", func(t *testing.T) {
		other := accounts.NewTokenService([]byte("other-key"), 24, "test-issuer", audience, nil)

		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")
		identity.On("Role").Return("user")

		tokenString, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects tokens for another issuer", func(t *testing.T) {
		other := accounts.NewTokenService(signingKey, 24, "rogue-issuer", audience, nil)

		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")
		identity.On("Role").Return("user")

		tokenString, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})
}
