package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/healthsurge/backend/internal/domain"
	"github.com/healthsurge/backend/internal/observability"
)

const alertHeader = "CRITICAL HEALTHSURGE ALERT:\n"

// Channels and outcomes used as metric labels.
const (
	channelSMS   = "sms"
	channelCall  = "call"
	channelEmail = "email"

	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
	outcomeMock    = "mock"
)

// Dispatcher fans alerts out to the contact roster and handles single-target
// calls and restock emails. Every send is best effort.
type Dispatcher struct {
	contacts     ContactRepository
	newMessenger MessengerFactory
	mailer       Mailer
	voiceCalls   bool
	clock        clockwork.Clock
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// DispatcherOptions groups Dispatcher dependencies.
type DispatcherOptions struct {
	Contacts   ContactRepository
	Messengers MessengerFactory
	Mailer     Mailer

	// VoiceCalls follows every successful emergency SMS with a voice call
	// reading the same alert.
	VoiceCalls bool

	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. Clock defaults to the real clock and
// Metrics may be nil.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		contacts:     opts.Contacts,
		newMessenger: opts.Messengers,
		mailer:       opts.Mailer,
		voiceCalls:   opts.VoiceCalls,
		clock:        clock,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// ComposeAlert builds the SMS body: a fixed header and one bulleted line per action.
func ComposeAlert(actions []string) string {
	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = "- " + a
	}
	return alertHeader + strings.Join(lines, "\n")
}

// ExecuteEmergency sends the alert to every contact by SMS, following each
// successful SMS with a voice call when enabled. A failure for one contact is
// recorded and the loop moves on.
func (d *Dispatcher) ExecuteEmergency(ctx context.Context, actions []string) domain.NotificationOutcome {
	batchID := uuid.NewString()
	logger := d.logger.With("batch_id", batchID)
	start := d.clock.Now()

	messenger, err := d.newMessenger()
	if err != nil {
		logger.Error("emergency dispatch aborted", "error", err)
		out := domain.FailedOutcome(err)
		out.BatchID = batchID
		return out
	}

	body := ComposeAlert(actions)
	contacts := d.contacts.List()
	results := make([]domain.ContactResult, 0, len(contacts))
	for _, c := range contacts {
		results = append(results, d.notifyContact(ctx, logger, messenger, c, body))
	}

	out := domain.Summarize(results)
	out.BatchID = batchID

	elapsed := d.clock.Since(start)
	if d.metrics != nil {
		d.metrics.DispatchDuration.Observe(elapsed.Seconds())
	}
	logger.Info("emergency dispatch finished",
		"status", out.Status,
		"contacts", len(contacts),
		"sent", out.SentCount,
		"errors", len(out.Errors),
		"elapsed", elapsed,
	)
	return out
}

func (d *Dispatcher) notifyContact(ctx context.Context, logger *slog.Logger, m Messenger, c domain.Contact, body string) domain.ContactResult {
	res := domain.ContactResult{ContactID: c.ID, Name: c.Name}

	logger.Debug("sending sms", "contact", c.Name, "phone", c.Phone)
	sid, err := m.SendSMS(ctx, c.Phone, body)
	if err != nil {
		res.SMS = domain.Delivery{Error: err.Error()}
		d.count(channelSMS, outcomeError)
		logger.Warn("sms failed", "contact", c.Name, "phone", c.Phone, "error", err)
		return res
	}
	res.SMS = domain.Delivery{OK: true, SID: sid}
	d.count(channelSMS, outcomeSuccess)

	if !d.voiceCalls {
		return res
	}
	if !m.CanCall() {
		res.Call = &domain.Delivery{Skipped: true}
		d.count(channelCall, outcomeSkipped)
		return res
	}

	callSID, err := m.PlaceCall(ctx, c.Phone, body)
	if err != nil {
		res.Call = &domain.Delivery{Error: err.Error()}
		d.count(channelCall, outcomeError)
		logger.Warn("voice call failed", "contact", c.Name, "phone", c.Phone, "error", err)
		return res
	}
	res.Call = &domain.Delivery{OK: true, SID: callSID}
	d.count(channelCall, outcomeSuccess)
	return res
}

// CallStaff places a single voice call. Without provider credentials the call
// is simulated and reported as a mocked success.
func (d *Dispatcher) CallStaff(ctx context.Context, phone, message string) domain.ActionOutcome {
	m, err := d.newMessenger()
	if errors.Is(err, domain.ErrConfiguration) {
		d.count(channelCall, outcomeMock)
		d.logger.Info("voice call simulated", "phone", phone, "reason", err)
		return domain.ActionOutcome{
			Status:  domain.StatusSuccess,
			Message: "Call simulated: Twilio credentials not configured",
			Mock:    true,
		}
	}
	if err != nil {
		return domain.ActionOutcome{Status: domain.StatusError, Message: err.Error()}
	}
	if !m.CanCall() {
		return domain.ActionOutcome{
			Status:  domain.StatusError,
			Message: "No Twilio phone number configured for voice calls",
		}
	}

	sid, err := m.PlaceCall(ctx, phone, message)
	if err != nil {
		d.count(channelCall, outcomeError)
		d.logger.Warn("voice call failed", "phone", phone, "error", err)
		return domain.ActionOutcome{Status: domain.StatusError, Message: err.Error()}
	}

	d.count(channelCall, outcomeSuccess)
	d.logger.Info("voice call initiated", "phone", phone, "sid", sid)
	return domain.ActionOutcome{
		Status:  domain.StatusSuccess,
		Message: "Call initiated successfully",
		SID:     sid,
	}
}

// ComposeRestockEmail returns the subject and plain-text body of a restock request.
func ComposeRestockEmail(item string, quantity int) (string, string) {
	subject := "Restock Request: " + item
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Our inventory forecast shows %s falling below safe levels.\n"+
			"Please arrange delivery of %d units at the earliest opportunity.\n\n"+
			"Item: %s\nQuantity: %d\n\n"+
			"Regards,\nHealthSurge Hospital Operations",
		item, quantity, item, quantity,
	)
	return subject, body
}

// SendRestockEmail emails a vendor a restock request.
func (d *Dispatcher) SendRestockEmail(ctx context.Context, item string, quantity int, vendor string) domain.ActionOutcome {
	subject, body := ComposeRestockEmail(item, quantity)

	if err := d.mailer.Send(ctx, vendor, subject, body); err != nil {
		d.count(channelEmail, outcomeError)
		d.logger.Warn("restock email failed", "vendor", vendor, "item", item, "error", err)
		return domain.ActionOutcome{Status: domain.StatusError, Message: err.Error()}
	}

	d.count(channelEmail, outcomeSuccess)
	d.logger.Info("restock email sent", "vendor", vendor, "item", item, "quantity", quantity)
	return domain.ActionOutcome{
		Status:  domain.StatusSuccess,
		Message: fmt.Sprintf("Restock request for %d x %s sent to %s", quantity, item, vendor),
	}
}

func (d *Dispatcher) count(channel, outcome string) {
	if d.metrics != nil {
		d.metrics.Notifications.WithLabelValues(channel, outcome).Inc()
	}
}
