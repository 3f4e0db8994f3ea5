package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults apply when only the key is set", func(t *testing.T) {
		t.Setenv("ACCOUNTS_SIGNING_KEY", "super-secret")

		cfg, err := accounts.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "super-secret", cfg.GetSigningKey())
		assert.Equal(t, 72, cfg.GetTokenExpiration())
		assert.Equal(t, "accounts", cfg.GetIssuer())
		assert.Equal(t, []string{"accounts"}, cfg.GetAudience())
		assert.Equal(t, "http://localhost:3000", cfg.GetDomain())
	})

	t.Run("environment values override defaults", func(t *testing.T) {
		t.Setenv("ACCOUNTS_SIGNING_KEY", "super-secret")
		t.Setenv("ACCOUNTS_TOKEN_EXPIRATION", "24")
		t.Setenv("ACCOUNTS_ISSUER", "api.example.com")
		t.Setenv("ACCOUNTS_AUDIENCE", "web,mobile")
		t.Setenv("ACCOUNTS_DOMAIN", "https://app.example.com")

		cfg, err := accounts.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, 24, cfg.GetTokenExpiration())
		assert.Equal(t, "api.example.com", cfg.GetIssuer())
		assert.Equal(t, []string{"web", "mobile"}, cfg.GetAudience())
		assert.Equal(t, "https://app.example.com", cfg.GetDomain())
	})

	t.Run("a missing signing key is an error", func(t *testing.T) {
		t.Setenv("ACCOUNTS_SIGNING_KEY", "")

		cfg, err := accounts.LoadConfig()

		require.Error(t, err)
		assert.Nil(t, cfg)
	})
}
