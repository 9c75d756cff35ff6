package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthsurge/backend/internal/config"
	"github.com/healthsurge/backend/internal/domain"
	"github.com/healthsurge/backend/internal/observability"
	"github.com/healthsurge/backend/internal/repository/memory"
)

type fakeMessenger struct {
	mu       sync.Mutex
	canCall  bool
	failCall map[string]bool
	clock    clockwork.FakeClock

	sms   []string
	calls []string
}

func (f *fakeMessenger) SendSMS(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clock != nil {
		f.clock.Advance(time.Second)
	}
	if !e164.MatchString(to) {
		return "", fmt.Errorf("twilio: %w: invalid phone number %q", domain.ErrTransport, to)
	}
	f.sms = append(f.sms, to+"|"+body)
	return fmt.Sprintf("SM%03d", len(f.sms)), nil
}

func (f *fakeMessenger) PlaceCall(_ context.Context, to, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCall[to] {
		return "", fmt.Errorf("twilio: %w: number unreachable", domain.ErrTransport)
	}
	f.calls = append(f.calls, to+"|"+message)
	return fmt.Sprintf("CA%03d", len(f.calls)), nil
}

func (f *fakeMessenger) CanCall() bool { return f.canCall }

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func factoryFor(m Messenger) MessengerFactory {
	return func() (Messenger, error) { return m, nil }
}

func newTestDispatcher(contacts []domain.Contact, m Messenger, voice bool) (*Dispatcher, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	d := NewDispatcher(DispatcherOptions{
		Contacts:   memory.NewContactRepository(domain.IDPolicyLength, contacts),
		Messengers: factoryFor(m),
		Mailer:     &fakeMailer{},
		VoiceCalls: voice,
		Metrics:    metrics,
		Logger:     quietLogger(),
	})
	return d, metrics
}

var testActions = []string{
	"Trigger emergency staff reallocation from nearby departments.",
	"Open overflow beds and notify charge nurse by SMS/alert.",
}

func TestComposeAlert(t *testing.T) {
	assert.Equal(t,
		"CRITICAL HEALTHSURGE ALERT:\n- a\n- b",
		ComposeAlert([]string{"a", "b"}),
	)
	assert.Equal(t, "CRITICAL HEALTHSURGE ALERT:\n", ComposeAlert(nil))
}

func TestExecuteEmergency_InvalidPhoneIsPartialFailure(t *testing.T) {
	m := &fakeMessenger{canCall: true}
	d, _ := newTestDispatcher([]domain.Contact{{ID: 1, Name: "Night Desk", Phone: "12345"}}, m, true)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusPartialFailure, out.Status)
	assert.Equal(t, 0, out.SentCount)
	require.Len(t, out.Errors, 1)
	assert.True(t, strings.HasPrefix(out.Errors[0], "Night Desk: "))
	assert.Empty(t, m.calls)
}

func TestExecuteEmergency_ContinuesAfterFailure(t *testing.T) {
	m := &fakeMessenger{canCall: true}
	contacts := []domain.Contact{
		{ID: 1, Name: "Sarah", Phone: "+919876543210"},
		{ID: 2, Name: "Broken", Phone: "not-a-number"},
		{ID: 3, Name: "Ambulance", Phone: "+919876543211"},
	}
	d, metrics := newTestDispatcher(contacts, m, true)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, 2, out.SentCount)
	assert.Equal(t, domain.EmergencyMessage, out.Message)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "Broken")
	require.Len(t, out.Results, 3)
	assert.Nil(t, out.Results[1].Call)
	require.NotNil(t, out.Results[2].Call)
	assert.True(t, out.Results[2].Call.OK)

	require.Len(t, m.sms, 2)
	assert.Equal(t, "+919876543210|"+ComposeAlert(testActions), m.sms[0])
	assert.Len(t, m.calls, 2)

	_, err := uuid.Parse(out.BatchID)
	assert.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues(channelSMS, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues(channelSMS, outcomeError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues(channelCall, outcomeSuccess)))
}

func TestExecuteEmergency_CallSkippedWithoutCallerID(t *testing.T) {
	m := &fakeMessenger{canCall: false}
	d, _ := newTestDispatcher(memory.DefaultContacts(), m, true)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.SentCount)
	assert.Empty(t, out.Errors)
	for _, r := range out.Results {
		require.NotNil(t, r.Call)
		assert.True(t, r.Call.Skipped)
	}
	assert.Empty(t, m.calls)
}

func TestExecuteEmergency_CallFailureRecordedButNotCounted(t *testing.T) {
	m := &fakeMessenger{canCall: true, failCall: map[string]bool{"+919876543212": true}}
	d, _ := newTestDispatcher(memory.DefaultContacts(), m, true)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, 3, out.SentCount)
	require.Len(t, out.Errors, 1)
	assert.True(t, strings.HasPrefix(out.Errors[0], "Dr. Rajesh Koothrappali (call): "))
}

func TestExecuteEmergency_VoiceCallsDisabled(t *testing.T) {
	m := &fakeMessenger{canCall: true}
	d, _ := newTestDispatcher(memory.DefaultContacts(), m, false)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, 3, out.SentCount)
	assert.Empty(t, m.calls)
	for _, r := range out.Results {
		assert.Nil(t, r.Call)
	}
}

func TestExecuteEmergency_EmptyRoster(t *testing.T) {
	d, _ := newTestDispatcher(nil, &fakeMessenger{}, true)

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusPartialFailure, out.Status)
	assert.Equal(t, 0, out.SentCount)
	assert.NotNil(t, out.Errors)
	assert.Empty(t, out.Errors)
}

func TestExecuteEmergency_MessengerUnavailable(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{
		Contacts:   memory.NewContactRepository(domain.IDPolicyLength, memory.DefaultContacts()),
		Messengers: TwilioFactory(config.Twilio{}, time.Second),
		Logger:     quietLogger(),
	})

	out := d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Equal(t, 0, out.SentCount)
	assert.Contains(t, out.Message, "TWILIO_ACCOUNT_SID")
}

func TestExecuteEmergency_ObservesDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := &fakeMessenger{clock: clock}
	metrics := observability.NewMetricsForTesting()
	d := NewDispatcher(DispatcherOptions{
		Contacts:   memory.NewContactRepository(domain.IDPolicyLength, memory.DefaultContacts()),
		Messengers: factoryFor(m),
		Clock:      clock,
		Metrics:    metrics,
		Logger:     quietLogger(),
	})

	d.ExecuteEmergency(context.Background(), testActions)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.DispatchDuration))
	assert.Equal(t, 3, len(m.sms))
}

func TestCallStaff_MockedWithoutCredentials(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{
		Messengers: TwilioFactory(config.Twilio{}, time.Second),
		Logger:     quietLogger(),
	})

	out := d.CallStaff(context.Background(), "+919876543210", "Be ready for tomorrow.")

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.True(t, out.Mock)
	assert.Empty(t, out.SID)
}

func TestCallStaff_RequiresCallerID(t *testing.T) {
	d, _ := newTestDispatcher(nil, &fakeMessenger{canCall: false}, true)

	out := d.CallStaff(context.Background(), "+919876543210", "hello")

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "phone number")
}

func TestCallStaff_Success(t *testing.T) {
	m := &fakeMessenger{canCall: true}
	d, _ := newTestDispatcher(nil, m, true)

	out := d.CallStaff(context.Background(), "+919876543210", "hello")

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, "CA001", out.SID)
	assert.False(t, out.Mock)
	assert.Equal(t, []string{"+919876543210|hello"}, m.calls)
}

func TestCallStaff_TransportFailure(t *testing.T) {
	m := &fakeMessenger{canCall: true, failCall: map[string]bool{"+15550000000": true}}
	d, _ := newTestDispatcher(nil, m, true)

	out := d.CallStaff(context.Background(), "+15550000000", "hello")

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "unreachable")
}

func TestSendRestockEmail_NoCredentials(t *testing.T) {
	d := NewDispatcher(DispatcherOptions{
		Mailer: NewEmailService(config.SMTP{Host: "127.0.0.1", Port: 1}, time.Second),
		Logger: quietLogger(),
	})

	out := d.SendRestockEmail(context.Background(), "N95 Masks", 500, "vendor@example.com")

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "EMAIL_USER")
}

func TestSendRestockEmail_Success(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(DispatcherOptions{Mailer: mailer, Logger: quietLogger()})

	out := d.SendRestockEmail(context.Background(), "Oxygen Cylinders", 40, "vendor@example.com")

	assert.Equal(t, domain.StatusSuccess, out.Status)
	assert.Equal(t, "vendor@example.com", mailer.to)
	assert.Equal(t, "Restock Request: Oxygen Cylinders", mailer.subject)
	assert.Contains(t, mailer.body, "Quantity: 40")
}

func TestSendRestockEmail_TransportFailure(t *testing.T) {
	mailer := &fakeMailer{err: fmt.Errorf("email: %w: 535 auth failed", domain.ErrTransport)}
	d := NewDispatcher(DispatcherOptions{Mailer: mailer, Logger: quietLogger()})

	out := d.SendRestockEmail(context.Background(), "Gloves", 10, "vendor@example.com")

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Message, "535")
}

func TestEmailService_FailsFastWithoutCredentials(t *testing.T) {
	svc := NewEmailService(config.SMTP{Host: "127.0.0.1", Port: 1}, time.Second)

	err := svc.Send(context.Background(), "vendor@example.com", "s", "b")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
