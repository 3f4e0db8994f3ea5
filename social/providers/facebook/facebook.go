package facebook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/social"
)

const defaultGraphURL = "https://graph.facebook.com/me"

// Config holds Facebook adapter configuration.
type Config struct {
	GraphURL   string
	Fields     []string
	HTTPClient *http.Client
}

// DefaultFields returns the profile fields requested from the graph API.
func DefaultFields() []string {
	return []string{"id", "email", "first_name", "last_name"}
}

// Provider implements social.Provider for Facebook.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Facebook provider.
func New(cfg Config) *Provider {
	if cfg.GraphURL == "" {
		cfg.GraphURL = defaultGraphURL
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFields()
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
	return "facebook"
}

// ProfileByToken implements social.Provider.
func (p *Provider) ProfileByToken(ctx context.Context, creds social.Credentials) (*social.Profile, error) {
	params := url.Values{
		"fields":       {joinFields(p.config.Fields)},
		"access_token": {creds.AccessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.GraphURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

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
		code, description, raw := parseGraphError(body)
		return nil, providerError("user_info", resp.StatusCode, code, description, nil, raw)
	}

	var me graphProfile
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, providerError("user_info", resp.StatusCode, "invalid_response", "failed to decode graph response", err, nil)
	}

	if me.ID == "" {
		return nil, providerError("user_info", resp.StatusCode, "missing_id", "graph response carried no user id", nil, nil)
	}

	return &social.Profile{
		ID:        me.ID,
		Provider:  "facebook",
		Email:     me.Email,
		FirstName: me.FirstName,
		LastName:  me.LastName,
		Raw: map[string]any{
			"id":         me.ID,
			"email":      me.Email,
			"first_name": me.FirstName,
			"last_name":  me.LastName,
		},
	}, nil
}

type graphProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func parseGraphError(body []byte) (string, string, map[string]any) {
	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && (ge.Error.Message != "" || ge.Error.Type != "") {
		return ge.Error.Type, ge.Error.Message, map[string]any{
			"type":    ge.Error.Type,
			"message": ge.Error.Message,
			"code":    ge.Error.Code,
		}
	}

	return "", "facebook request failed", nil
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}

func providerError(operation string, status int, code, description string, err error, raw map[string]any) *social.ProviderError {
	return &social.ProviderError{
		Provider:    "facebook",
		Operation:   operation,
		Status:      status,
		Code:        code,
		Description: description,
		Err:         err,
		Raw:         raw,
	}
}
