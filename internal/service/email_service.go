package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/healthsurge/backend/internal/config"
	"github.com/healthsurge/backend/internal/domain"
)

// EmailService implements Mailer over authenticated SMTP submission
type EmailService struct {
	cfg     config.SMTP
	timeout time.Duration
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.SMTP, timeout time.Duration) *EmailService {
	return &EmailService{cfg: cfg, timeout: timeout}
}

// Send submits one plain-text message. Without EMAIL_USER and EMAIL_PASSWORD it
// fails before opening a connection.
func (s *EmailService) Send(ctx context.Context, to, subject, body string) error {
	if !s.cfg.HasCredentials() {
		return fmt.Errorf("email: %w: EMAIL_USER and EMAIL_PASSWORD must be set", domain.ErrConfiguration)
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.User); err != nil {
		return fmt.Errorf("email: %w: invalid sender: %v", domain.ErrConfiguration, err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("email: %w: invalid recipient: %v", domain.ErrValidation, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.timeout),
	)
	if err != nil {
		return fmt.Errorf("email: %w: failed to create client: %v", domain.ErrConfiguration, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email: %w: %v", domain.ErrTransport, err)
	}
	return nil
}
