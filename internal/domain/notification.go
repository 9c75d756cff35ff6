package domain

import "fmt"

// OutcomeStatus is the aggregate result of a notification operation.
type OutcomeStatus string

const (
	StatusSuccess        OutcomeStatus = "success"
	StatusPartialFailure OutcomeStatus = "partial_failure"
	StatusError          OutcomeStatus = "error"
)

// EmergencyMessage is reported when a fan-out ran to completion.
const EmergencyMessage = "Emergency protocols executed. SMS alerts sent."

// EmergencyRequest is the body of an emergency fan-out.
type EmergencyRequest struct {
	Actions []string `json:"actions" validate:"required"`
}

// CallRequest is the body of an ad-hoc voice call.
type CallRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// RestockRequest is the body of a restock email.
type RestockRequest struct {
	ItemName    string `json:"item_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	VendorEmail string `json:"vendor_email" validate:"required,email"`
}

// Delivery is the result of one send over one channel.
type Delivery struct {
	OK      bool   `json:"ok"`
	SID     string `json:"sid,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ContactResult holds the per-channel results for one contact in a fan-out.
// Call is nil when no call was attempted.
type ContactResult struct {
	ContactID int       `json:"contact_id"`
	Name      string    `json:"name"`
	SMS       Delivery  `json:"sms"`
	Call      *Delivery `json:"call,omitempty"`
}

// NotificationOutcome summarises a fan-out for the caller.
type NotificationOutcome struct {
	Status    OutcomeStatus   `json:"status"`
	SentCount int             `json:"sent_count"`
	Errors    []string        `json:"errors"`
	Message   string          `json:"message"`
	BatchID   string          `json:"batch_id,omitempty"`
	Results   []ContactResult `json:"results,omitempty"`
}

// ActionOutcome is returned by single-target operations (voice call, email).
type ActionOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
	SID     string        `json:"call_sid,omitempty"`
	Mock    bool          `json:"mock,omitempty"`
}

// Summarize reduces per-contact results into an outcome. Only successful SMS
// sends count towards SentCount; call failures still produce an error entry.
func Summarize(results []ContactResult) NotificationOutcome {
	out := NotificationOutcome{
		Errors:  []string{},
		Message: EmergencyMessage,
		Results: results,
	}
	for _, r := range results {
		if r.SMS.OK {
			out.SentCount++
		} else {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", r.Name, r.SMS.Error))
		}
		if r.Call != nil && !r.Call.OK && !r.Call.Skipped {
			out.Errors = append(out.Errors, fmt.Sprintf("%s (call): %s", r.Name, r.Call.Error))
		}
	}
	if out.SentCount > 0 {
		out.Status = StatusSuccess
	} else {
		out.Status = StatusPartialFailure
	}
	return out
}

// FailedOutcome builds the outcome for a fan-out that never reached a contact.
func FailedOutcome(err error) NotificationOutcome {
	return NotificationOutcome{
		Status:  StatusError,
		Errors:  []string{},
		Message: err.Error(),
	}
}
