package google_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/social"
	"github.com/goliatone/go-accounts/social/providers/google"
)

func TestGoogleProfileByToken(t *testing.T) {
	t.Run("maps the userinfo response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"sub": "g-12345",
				"email": "pepe@example.com",
				"email_verified": true,
				"name": "Pepe Rone",
				"given_name": "Pepe",
				"family_name": "Rone"
			}`))
		}))
		defer server.Close()

		provider := google.New(google.Config{UserInfoURL: server.URL})
		require.Equal(t, "google", provider.Name())

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			AccessToken: "access-token",
		})

		require.NoError(t, err)
		assert.Equal(t, "g-12345", profile.ID)
		assert.Equal(t, "google", profile.Provider)
		assert.Equal(t, "pepe@example.com", profile.Email)
		assert.Equal(t, "Pepe", profile.FirstName)
		assert.Equal(t, "Rone", profile.LastName)
	})

	t.Run("rejected tokens surface the provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "invalid_token", "error_description": "expired"}`))
		}))
		defer server.Close()

		provider := google.New(google.Config{UserInfoURL: server.URL})

		profile, err := provider.ProfileByToken(context.Background(), social.Credentials{
			AccessToken: "stale-token",
		})

		require.Error(t, err)
		assert.Nil(t, profile)

		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "google", perr.Provider)
		assert.Equal(t, http.StatusUnauthorized, perr.Status)
		assert.Equal(t, "invalid_token", perr.Code)
	})

	t.Run("garbage payloads surface a decode error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not-json"))
		}))
		defer server.Close()

		provider := google.New(google.Config{UserInfoURL: server.URL})

		_, err := provider.ProfileByToken(context.Background(), social.Credentials{})

		require.Error(t, err)
		perr, ok := social.AsProviderError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_response", perr.Code)
	})
}
