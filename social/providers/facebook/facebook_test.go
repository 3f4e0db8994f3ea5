package facebook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/social"
	"github.com/goliatone/go-accounts/social/providers/facebook"
)

func TestFacebookProfileByToken(t *testing.T) {
	t.Run("maps the graph response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "access-token", r.URL.Query().Get("access_token"))
			assert.Equal(t, "id,email,first_name,last_name", r.URL.Query().Get("fields"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "fb-999",
				"email": "pepe@example.com",
				"first_name": "Pepe",
				"last_name": "Rone"
			}`))
		}))
		defer server.Close()

		provider := facebook.New(facebook.Config{GraphURL: server.URL})
		require.Equal(t, "facebook", provider.Name())

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			AccessToken: "access-token",
		})

		require.NoError(t, err)
		assert.Equal(t, "fb-999", profile.ID)
		assert.Equal(t, "facebook", profile.Provider)
		assert.Equal(t, "pepe@example.com", profile.Email)
		assert.Equal(t, "Pepe", profile.FirstName)
		assert.Equal(t, "Rone", profile.LastName)
	})

	t.Run("graph errors carry the provider details", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190}}`))
		}))
		defer server.Close()

		provider := facebook.New(facebook.Config{GraphURL: server.URL})

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			AccessToken: "bad-token",
		})

		require.Error(t, err)
		assert.Nil(t, profile)

		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "facebook", perr.Provider)
		assert.Equal(t, "OAuthException", perr.Code)
		assert.Equal(t, "Invalid OAuth access token.", perr.Description)
	})

	t.Run("responses without an id are rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email": "no-id@example.com"}`))
		}))
		defer server.Close()

		provider := facebook.New(facebook.Config{GraphURL: server.URL})

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "missing_id", perr.Code)
	})
}
