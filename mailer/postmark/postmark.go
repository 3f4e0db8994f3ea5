// Package postmark delivers account mail through the Postmark transactional
// API.
package postmark

import (
	"context"

	"github.com/goliatone/go-errors"
	postmarkapi "github.com/mrz1836/postmark"

	"github.com/goliatone/go-accounts"
)

// Config holds the Postmark credentials and sender addresses.
type Config struct {
	ServerToken  string
	AccountToken string
	From         string
	ReplyTo      string
}

// Sender implements accounts.Sender on top of the Postmark client.
type Sender struct {
	client *postmarkapi.Client
	config Config
}

// New creates a Postmark-backed sender. Both tokens and the sender address
// are required so misconfiguration fails at startup, not on the first mail.
func New(cfg Config) (*Sender, error) {
	if cfg.ServerToken == "" {
		return nil, errors.New("postmark server token is required", errors.CategoryBadInput)
	}
	if cfg.AccountToken == "" {
		return nil, errors.New("postmark account token is required", errors.CategoryBadInput)
	}
	if cfg.From == "" {
		return nil, errors.New("postmark sender address is required", errors.CategoryBadInput)
	}

	return &Sender{
		client: postmarkapi.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}, nil
}

// SendEmail implements accounts.Sender. Opens and HTML link clicks are
// tracked; plain text links are left alone.
func (s *Sender) SendEmail(ctx context.Context, email accounts.Email) error {
	resp, err := s.client.SendEmail(ctx, postmarkapi.Email{
		From:       s.config.From,
		ReplyTo:    s.config.ReplyTo,
		To:         email.To,
		Subject:    email.Subject,
		HTMLBody:   email.HTMLBody,
		TextBody:   email.TextBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "postmark send failed")
	}
	if resp.ErrorCode > 0 {
		return errors.New("postmark rejected the message", errors.CategoryExternal).
			WithMetadata(map[string]any{
				"error_code": resp.ErrorCode,
				"message":    resp.Message,
			})
	}
	return nil
}
