package apple_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/social"
	"github.com/goliatone/go-accounts/social/providers/apple"
)

const testKID = "test-key-1"

type identityTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

func newSigningKey(t *testing.T) (*rsa.PrivateKey, *keyfunc.JWKS) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	given := keyfunc.NewGivenCustom(key.Public(), keyfunc.GivenKeyOptions{
		Algorithm: "RS256",
	})

	return key, keyfunc.NewGiven(map[string]keyfunc.GivenKey{testKID: given})
}

func signIdentityToken(t *testing.T, key *rsa.PrivateKey, claims identityTokenClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID

	signed, err := token.SignedString(key)
	require.NoError(t, err)

	return signed
}

func TestAppleProfileByToken(t *testing.T) {
	key, jwks := newSigningKey(t)

	baseClaims := func() identityTokenClaims {
		return identityTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "https://appleid.apple.com",
				Subject:   "apple-user-001",
				Audience:  jwt.ClaimStrings{"com.example.app"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
			Email: "pepe@privaterelay.appleid.com",
		}
	}

	t.Run("verifies the identity token", func(t *testing.T) {
		provider := apple.New(apple.Config{
			ClientID: "com.example.app",
			JWKS:     jwks,
		})
		require.Equal(t, "apple", provider.Name())

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			IdentityToken: signIdentityToken(t, key, baseClaims()),
		})

		require.NoError(t, err)
		assert.Equal(t, "apple-user-001", profile.ID)
		assert.Equal(t, "apple", profile.Provider)
		assert.Equal(t, "pepe@privaterelay.appleid.com", profile.Email)
	})

	t.Run("the access token slot works as a fallback", func(t *testing.T) {
		provider := apple.New(apple.Config{JWKS: jwks})

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			AccessToken: signIdentityToken(t, key, baseClaims()),
		})

		require.NoError(t, err)
		assert.Equal(t, "apple-user-001", profile.ID)
	})

	t.Run("missing tokens are rejected before verification", func(t *testing.T) {
		provider := apple.New(apple.Config{JWKS: jwks})

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "missing_token", perr.Code)
	})

	t.Run("wrong issuer fails verification", func(t *testing.T) {
		provider := apple.New(apple.Config{JWKS: jwks})

		claims := baseClaims()
		claims.Issuer = "https://not-apple.example.com"

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{
			IdentityToken: signIdentityToken(t, key, claims),
		})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_token", perr.Code)
	})

	t.Run("wrong audience fails verification when a client id is set", func(t *testing.T) {
		provider := apple.New(apple.Config{
			ClientID: "com.example.app",
			JWKS:     jwks,
		})

		claims := baseClaims()
		claims.Audience = jwt.ClaimStrings{"com.other.app"}

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{
			IdentityToken: signIdentityToken(t, key, claims),
		})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_token", perr.Code)
	})

	t.Run("tokens without a subject are rejected", func(t *testing.T) {
		provider := apple.New(apple.Config{JWKS: jwks})

		claims := baseClaims()
		claims.Subject = ""

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{
			IdentityToken: signIdentityToken(t, key, claims),
		})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_token", perr.Code)
	})

	t.Run("concurrent verifications share the key set", func(t *testing.T) {
		provider := apple.New(apple.Config{JWKS: jwks})
		token := signIdentityToken(t, key, baseClaims())

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
					IdentityToken: token,
				})
				assert.NoError(t, err)
				assert.NotNil(t, profile)
			}()
		}
		wg.Wait()
	})

	t.Run("tokens signed by an unknown key are rejected", func(t *testing.T) {
		stranger, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		provider := apple.New(apple.Config{JWKS: jwks})

		_, err = provider.ProfileByToken(context.Background(), social.Credentials{
			IdentityToken: signIdentityToken(t, stranger, baseClaims()),
		})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_token", perr.Code)
	})
}
