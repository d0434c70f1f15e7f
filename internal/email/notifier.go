// Package email sends account notices through the Resend API.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const passwordChangedSubject = "Your password was changed"

// Notifier delivers account notices. When email is disabled it only logs.
type Notifier struct {
	config       config.EmailConfig
	resendClient *resend.Client
	templates    *template.Template
	now          func() time.Time
	logger       zerolog.Logger
}

// PasswordChangedData is rendered into the password-changed notice.
type PasswordChangedData struct {
	UserName  string
	ChangedAt string
	Year      int
}

func NewNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*Notifier, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	n := &Notifier{
		config:    cfg,
		templates: templates,
		now:       time.Now,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		n.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return n, nil
}

// WithClient replaces the Resend client, for pointing at a test server.
func (n *Notifier) WithClient(client *resend.Client) *Notifier {
	n.resendClient = client
	return n
}

// PasswordChanged tells the account owner that their password was reset.
func (n *Notifier) PasswordChanged(ctx context.Context, to, userName string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !n.config.Enabled {
		n.logger.Info().
			Str("to", to).
			Str("user_name", userName).
			Msg("email disabled, skipping password changed notice")
		return nil
	}

	now := n.now().UTC()
	body, err := n.render("password_changed.html", PasswordChangedData{
		UserName:  userName,
		ChangedAt: now.Format("2006-01-02 15:04 UTC"),
		Year:      now.Year(),
	})
	if err != nil {
		return err
	}

	if err := n.sendViaResend(ctx, to, passwordChangedSubject, body); err != nil {
		return fmt.Errorf("send password changed notice: %w", err)
	}
	return nil
}

func (n *Notifier) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := n.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// validateEmailAddress rejects malformed addresses and header injection.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}
