package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"

	"github.com/healthsurge/backend/internal/config"
	"github.com/healthsurge/backend/internal/domain"
)

// SenderKind tags how outbound SMS identify their origin.
type SenderKind int

const (
	SenderNone SenderKind = iota
	SenderMessagingService
	SenderPhoneNumber
)

// Sender is the resolved SMS origin: a messaging service SID or a phone number.
type Sender struct {
	Kind  SenderKind
	Value string
}

// ResolveSender prefers a messaging service over a bare phone number.
func ResolveSender(cfg config.Twilio) Sender {
	switch {
	case cfg.MessagingServiceSID != "":
		return Sender{Kind: SenderMessagingService, Value: cfg.MessagingServiceSID}
	case cfg.PhoneNumber != "":
		return Sender{Kind: SenderPhoneNumber, Value: cfg.PhoneNumber}
	default:
		return Sender{Kind: SenderNone}
	}
}

var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// TwilioGateway implements Messenger on the Twilio REST API
type TwilioGateway struct {
	client   *twilio.RestClient
	sender   Sender
	callerID string
}

// NewTwilioGateway creates a gateway. Missing account SID or auth token is a
// configuration error.
func NewTwilioGateway(cfg config.Twilio, timeout time.Duration) (*TwilioGateway, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("twilio: %w: TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set", domain.ErrConfiguration)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	client.SetTimeout(timeout)

	return &TwilioGateway{
		client:   client,
		sender:   ResolveSender(cfg),
		callerID: cfg.PhoneNumber,
	}, nil
}

// TwilioFactory returns a MessengerFactory bound to cfg.
func TwilioFactory(cfg config.Twilio, timeout time.Duration) MessengerFactory {
	return func() (Messenger, error) {
		return NewTwilioGateway(cfg, timeout)
	}
}

// SendSMS sends body to a single number
func (g *TwilioGateway) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !e164.MatchString(to) {
		return "", fmt.Errorf("twilio: %w: invalid phone number %q", domain.ErrTransport, to)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(body)

	switch g.sender.Kind {
	case SenderMessagingService:
		params.SetMessagingServiceSid(g.sender.Value)
	case SenderPhoneNumber:
		params.SetFrom(g.sender.Value)
	default:
		return "", fmt.Errorf("twilio: %w: no Twilio phone number or messaging service SID configured", domain.ErrConfiguration)
	}

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: %w: %v", domain.ErrTransport, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// PlaceCall dials to and reads message with a <Say> verb
func (g *TwilioGateway) PlaceCall(ctx context.Context, to, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !g.CanCall() {
		return "", fmt.Errorf("twilio: %w: TWILIO_PHONE_NUMBER is required for voice calls", domain.ErrConfiguration)
	}
	if !e164.MatchString(to) {
		return "", fmt.Errorf("twilio: %w: invalid phone number %q", domain.ErrTransport, to)
	}

	doc, err := SpokenAlert(message)
	if err != nil {
		return "", err
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(g.callerID)
	params.SetTwiml(doc)

	resp, err := g.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("twilio: %w: %v", domain.ErrTransport, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// CanCall reports whether a caller-ID number is configured
func (g *TwilioGateway) CanCall() bool {
	return g.callerID != ""
}

// SpokenAlert renders the TwiML document that reads message aloud.
func SpokenAlert(message string) (string, error) {
	doc, err := twiml.Voice([]twiml.Element{
		&twiml.VoiceSay{Message: message},
	})
	if err != nil {
		return "", fmt.Errorf("twilio: failed to render twiml: %w", err)
	}
	return doc, nil
}
