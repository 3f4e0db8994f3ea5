package accounts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Embedded mail template names.
const (
	TemplateActivation    = "activation"
	TemplateResetPassword = "reset-password"
)

// Sender delivers a fully rendered email.
type Sender interface {
	SendEmail(ctx context.Context, email Email) error
}

// Email is the rendered message handed to a Sender.
type Email struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body,omitempty"`
	TextBody string `json:"text_body,omitempty"`
}

// TemplateMailer renders the embedded mail templates and hands the result to
// a Sender for delivery.
type TemplateMailer struct {
	engine *django.Engine
	sender Sender
	logger Logger
}

// NewTemplateMailer creates a mailer backed by the embedded templates.
func NewTemplateMailer(sender Sender) (*TemplateMailer, error) {
	engine := django.NewFileSystem(http.FS(TemplatesFS()), ".html")
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load mail templates")
	}

	return &TemplateMailer{
		engine: engine,
		sender: sender,
		logger: defLogger{},
	}, nil
}

func (m *TemplateMailer) WithLogger(logger Logger) *TemplateMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send implements Mailer.
func (m *TemplateMailer) Send(ctx context.Context, msg MailMessage) error {
	var body bytes.Buffer
	if msg.Template != "" {
		if err := m.engine.Render(&body, msg.Template, msg.Context); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to render mail template").
				WithMetadata(map[string]any{
					"template": msg.Template,
				})
		}
	}

	m.logger.Debug("sending %s mail to %s", msg.Template, msg.To)

	return m.sender.SendEmail(ctx, Email{
		To:       msg.To,
		Subject:  msg.Subject,
		HTMLBody: body.String(),
		TextBody: msg.Text,
	})
}

// devMailer logs messages instead of delivering them. It is the default
// until WithMailer configures a real sender.
type devMailer struct {
	logger Logger
}

// Send implements Mailer.
func (d devMailer) Send(_ context.Context, msg MailMessage) error {
	d.logger.Info("mail to=%s subject=%q template=%s", msg.To, msg.Subject, msg.Template)
	fmt.Println(print.MaybePrettyJSON(msg.Context))
	return nil
}
