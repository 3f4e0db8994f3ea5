package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/social"
)

const defaultUserInfoURL = "https://api.twitter.com/2/users/me"

// Config holds Twitter adapter configuration.
type Config struct {
	UserInfoURL string
	HTTPClient  *http.Client
}

// Provider implements social.Provider for Twitter. The v2 users endpoint
// authenticates with the user's bearer token; the OAuth1 token secret in the
// credentials is accepted for wire compatibility but not needed here.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Twitter provider.
func New(cfg Config) *Provider {
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string {
	return "twitter"
}

// ProfileByToken implements social.Provider.
func (p *Provider) ProfileByToken(ctx context.Context, creds social.Credentials) (*social.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		code, description, raw := parseTwitterError(body)
		return nil, providerError("user_info", resp.StatusCode, code, description, nil, raw)
	}

	var me twitterUserResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, providerError("user_info", resp.StatusCode, "invalid_response", "failed to decode users response", err, nil)
	}

	if me.Data.ID == "" {
		return nil, providerError("user_info", resp.StatusCode, "missing_id", "users response carried no id", nil, nil)
	}

	// Twitter does not expose the account email through this endpoint; the
	// profile goes out with an empty email and linking falls back to the
	// (provider, id) identity pair.
	first, last := splitName(me.Data.Name)

	return &social.Profile{
		ID:        me.Data.ID,
		Provider:  "twitter",
		Name:      me.Data.Name,
		FirstName: first,
		LastName:  last,
		Raw: map[string]any{
			"id":       me.Data.ID,
			"name":     me.Data.Name,
			"username": me.Data.Username,
		},
	}, nil
}

type twitterUserResponse struct {
	Data struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
}

type twitterError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

func parseTwitterError(body []byte) (string, string, map[string]any) {
	var te twitterError
	if err := json.Unmarshal(body, &te); err == nil && (te.Title != "" || te.Detail != "") {
		return te.Title, te.Detail, map[string]any{
			"title":  te.Title,
			"detail": te.Detail,
			"type":   te.Type,
		}
	}

	return "", "twitter request failed", nil
}

func splitName(name string) (string, string) {
	if name == "" {
		return "", ""
	}

	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *social.ProviderError {
	return &social.ProviderError{
		Provider:    "twitter",
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
