package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-accounts"
)

func TestJWTClaims(t *testing.T) {
	now := time.Now()

	t.Run("uid takes precedence over subject", func(t *testing.T) {
		claims := &accounts.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
			UID:              "uid-id",
		}

		assert.Equal(t, "subject-id", claims.Subject())
		assert.Equal(t, "uid-id", claims.UserID())
	})

	t.Run("user id falls back to subject", func(t *testing.T) {
		claims := &accounts.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-id"},
		}

		assert.Equal(t, "subject-id", claims.UserID())
	})

	t.Run("role checks", func(t *testing.T) {
		claims := &accounts.JWTClaims{UserRole: accounts.RoleAdmin}

		assert.Equal(t, accounts.RoleAdmin, claims.Role())
		assert.True(t, claims.HasRole(accounts.RoleAdmin))
		assert.False(t, claims.HasRole(accounts.RoleUser))
	})

	t.Run("timestamps", func(t *testing.T) {
		claims := &accounts.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}

		assert.WithinDuration(t, now, claims.IssuedAt(), time.Second)
		assert.WithinDuration(t, now.Add(time.Hour), claims.Expires(), time.Second)
	})

	t.Run("zero timestamps for bare claims", func(t *testing.T) {
		claims := &accounts.JWTClaims{}

		assert.True(t, claims.Expires().IsZero())
		assert.True(t, claims.IssuedAt().IsZero())
	})
}
