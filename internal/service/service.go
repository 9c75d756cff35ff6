package service

import (
	"context"

	"github.com/healthsurge/backend/internal/domain"
)

// Repositories are re-exported from domain for convenience
type (
	ContactRepository    = domain.ContactRepository
	HistoricalRepository = domain.HistoricalRepository
	AuditRepository      = domain.AuditRepository
)

// Messenger sends SMS and places voice calls through a telephony provider.
type Messenger interface {
	// SendSMS delivers body to the given number and returns the provider message id
	SendSMS(ctx context.Context, to, body string) (string, error)

	// PlaceCall dials the number and reads message aloud, returning the call id
	PlaceCall(ctx context.Context, to, message string) (string, error)

	// CanCall reports whether a caller-ID number is configured
	CanCall() bool
}

// MessengerFactory builds a Messenger for one operation. It returns an error
// wrapping domain.ErrConfiguration when credentials are missing.
type MessengerFactory func() (Messenger, error)

// Mailer submits plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
