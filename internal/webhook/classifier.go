// Package webhook turns gateway payment notifications into ledger and domain updates.
package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	m "github.com/example/asaas-gateway/pkg/metrics"
)

// Gateway event names that mean the charge has been paid.
const (
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
)

// Payment event names published by the gateway. Anything else is still
// reconciled but reported under a single metrics label.
var knownEvents = map[string]bool{
	"PAYMENT_CREATED":                      true,
	"PAYMENT_AWAITING_RISK_ANALYSIS":       true,
	"PAYMENT_APPROVED_BY_RISK_ANALYSIS":    true,
	"PAYMENT_REPROVED_BY_RISK_ANALYSIS":    true,
	"PAYMENT_AUTHORIZED":                   true,
	"PAYMENT_UPDATED":                      true,
	EventPaymentConfirmed:                  true,
	EventPaymentReceived:                   true,
	"PAYMENT_CREDIT_CARD_CAPTURE_REFUSED":  true,
	"PAYMENT_ANTICIPATED":                  true,
	"PAYMENT_OVERDUE":                      true,
	"PAYMENT_DELETED":                      true,
	"PAYMENT_RESTORED":                     true,
	"PAYMENT_REFUNDED":                     true,
	"PAYMENT_PARTIALLY_REFUNDED":           true,
	"PAYMENT_REFUND_IN_PROGRESS":           true,
	"PAYMENT_RECEIVED_IN_CASH_UNDONE":      true,
	"PAYMENT_CHARGEBACK_REQUESTED":         true,
	"PAYMENT_CHARGEBACK_DISPUTE":           true,
	"PAYMENT_AWAITING_CHARGEBACK_REVERSAL": true,
	"PAYMENT_DUNNING_RECEIVED":             true,
	"PAYMENT_DUNNING_REQUESTED":            true,
	"PAYMENT_BANK_SLIP_VIEWED":             true,
	"PAYMENT_CHECKOUT_VIEWED":              true,
}

type Reason string

const (
	ReasonMalformedJSON  Reason = "malformed-json"
	ReasonMissingEvent   Reason = "missing-event"
	ReasonMissingPayment Reason = "missing-payment"
)

// Rejection is returned by Classify for input that must not reach the ledger.
type Rejection struct {
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("webhook rejected: %s: %v", r.Reason, r.Err)
	}
	return "webhook rejected: " + string(r.Reason)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Event is a validated gateway notification.
type Event struct {
	Type          string
	PaymentID     string
	PaymentStatus string
}

// Terminal reports whether the event marks the charge as paid.
func (e Event) Terminal() bool {
	return e.Type == EventPaymentReceived || e.Type == EventPaymentConfirmed
}

// MetricLabel is the event type when it is a known gateway event, "other" otherwise.
func (e Event) MetricLabel() string {
	if knownEvents[e.Type] {
		return e.Type
	}
	return m.OtherLabel
}

// HasStatus is false when the payload carried no status; the ledger keeps its value.
func (e Event) HasStatus() bool { return e.PaymentStatus != "" }

type paymentFields struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Object is raw because the gateway also uses it as a plain type tag
// ("object": "payment"); only an embedded object is read as a fallback.
type inboundPayment struct {
	paymentFields
	Object json.RawMessage `json:"object"`
}

func (p inboundPayment) nested() paymentFields {
	var f paymentFields
	if isObject(p.Object) {
		_ = json.Unmarshal(p.Object, &f)
	}
	return f
}

func isObject(raw json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(raw)), "{")
}

type inboundEvent struct {
	Event   string          `json:"event"`
	Payment json.RawMessage `json:"payment"`
}

// Classify validates a raw webhook body. Payment id and status are read from
// payment.{id,status}, falling back to payment.object.{id,status}.
func Classify(body []byte) (Event, error) {
	var in inboundEvent
	if err := json.Unmarshal(body, &in); err != nil {
		return Event{}, &Rejection{Reason: ReasonMalformedJSON, Err: err}
	}
	if in.Event == "" {
		return Event{}, &Rejection{Reason: ReasonMissingEvent}
	}

	if !isObject(in.Payment) {
		return Event{}, &Rejection{Reason: ReasonMissingPayment}
	}
	var p inboundPayment
	if err := json.Unmarshal(in.Payment, &p); err != nil {
		return Event{}, &Rejection{Reason: ReasonMalformedJSON, Err: err}
	}

	nested := p.nested()
	id, ok := lo.Coalesce(p.ID, nested.ID)
	if !ok {
		return Event{}, &Rejection{Reason: ReasonMissingPayment}
	}
	status, _ := lo.Coalesce(p.Status, nested.Status)

	return Event{Type: in.Event, PaymentID: id, PaymentStatus: status}, nil
}
