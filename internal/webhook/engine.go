package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
	m "github.com/example/asaas-gateway/pkg/metrics"
)

// Stage names a step of reconciliation that can fail without failing the event.
type Stage string

const (
	StageLookup  Stage = "lookup"
	StageStatus  Stage = "status"
	StageDomain  Stage = "domain"
	StageHistory Stage = "history"
	StagePublish Stage = "publish"
	StagePanic   Stage = "panic"
)

// Publisher receives a status notification for every reconciled known payment.
type Publisher interface {
	Publish(ctx context.Context, key, payload []byte) error
}

// AckDecision is what the sender sees. Once an event passed classification it is
// always acknowledged, so the gateway never retries a delivery we already took.
type AckDecision struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

// Outcome is the internal record of one reconciliation, including absorbed failures.
type Outcome struct {
	PaymentID      string
	Event          string
	Known          bool
	PreviousStatus string
	StatusWritten  bool
	// StatusSkipped is set when the monotonic guard refused a regression.
	StatusSkipped bool
	Terminal      bool
	Domain        reference.Result
	Failures      map[Stage]error
}

func (o *Outcome) fail(stage Stage, err error) {
	if o.Failures == nil {
		o.Failures = make(map[Stage]error)
	}
	o.Failures[stage] = err
}

func (o Outcome) Failed(stage Stage) error { return o.Failures[stage] }

// Label is the metrics outcome label.
func (o Outcome) Label() string {
	switch {
	case len(o.Failures) > 0:
		return "partial_failure"
	case !o.Known:
		return "unknown_payment"
	case o.Domain.Changed:
		return "domain_applied"
	case o.Domain.Applied:
		return "domain_unchanged"
	default:
		return "status_only"
	}
}

// Acknowledge applies the always-acknowledge policy. Ledger-stage failures are
// echoed back in the body for diagnosis; domain side effects never are.
func Acknowledge(o Outcome) AckDecision {
	ack := AckDecision{Received: true}
	for _, stage := range []Stage{StagePanic, StageLookup, StageStatus} {
		if err := o.Failed(stage); err != nil {
			ack.Error = err.Error()
			break
		}
	}
	return ack
}

type Engine struct {
	Ledger    ledger.PaymentStore
	Resolver  *reference.Resolver
	Publisher Publisher
	Logger    *zap.Logger
	// Monotonic rejects status updates that move a charge backwards in its lifecycle.
	Monotonic      bool
	PublishTimeout time.Duration
}

func NewEngine(store ledger.PaymentStore, resolver *reference.Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Ledger:         store,
		Resolver:       resolver,
		Logger:         logger,
		PublishTimeout: 2 * time.Second,
	}
}

// Reconcile applies one classified event. It never fails: every error after
// classification ends up in Outcome.Failures.
func (e *Engine) Reconcile(ctx context.Context, ev Event) (ack AckDecision, out Outcome) {
	out = Outcome{PaymentID: ev.PaymentID, Event: ev.Type, Terminal: ev.Terminal()}
	defer func() {
		if r := recover(); r != nil {
			e.failed(&out, StagePanic, fmt.Errorf("reconcile panic: %v", r))
		}
		m.IncWebhookEvent(ev.MetricLabel(), out.Label())
		ack = Acknowledge(out)
	}()

	e.reconcile(ctx, ev, &out)
	return ack, out
}

func (e *Engine) reconcile(ctx context.Context, ev Event, out *Outcome) {
	log := e.Logger.With(zap.String("payment_id", ev.PaymentID), zap.String("event", ev.Type))

	rec, err := e.Ledger.FindPayment(ctx, ev.PaymentID)
	if errors.Is(err, ledger.ErrNotFound) {
		log.Info("webhook for unknown payment ignored")
		return
	}
	if err != nil {
		e.failed(out, StageLookup, err)
		return
	}
	out.Known = true
	out.PreviousStatus = rec.Status

	if ev.HasStatus() {
		switch {
		case e.Monotonic && ledger.IsRegression(rec.Status, ev.PaymentStatus):
			out.StatusSkipped = true
			log.Info("stale status ignored",
				zap.String("status", rec.Status), zap.String("incoming_status", ev.PaymentStatus))
		default:
			if err := e.Ledger.UpdatePaymentStatus(ctx, ev.PaymentID, ev.PaymentStatus); err != nil {
				e.failed(out, StageStatus, err)
			} else {
				out.StatusWritten = true
			}
		}
	}

	if rec.ReferenceID != "" && ev.Terminal() {
		res, err := e.Resolver.Resolve(rec.ReferenceType).Apply(ctx, rec.ReferenceID)
		out.Domain = res
		if err != nil {
			e.failed(out, StageDomain, err)
		}
		if res.HistoryErr != nil {
			e.failed(out, StageHistory, res.HistoryErr)
		}
		if res.Changed {
			log.Info("domain reference updated",
				zap.String("reference_type", string(rec.ReferenceType)),
				zap.String("reference_id", rec.ReferenceID))
		}
	}

	e.publish(ctx, ev, rec, out)
}

type statusNotification struct {
	PaymentID      string    `json:"payment_id"`
	Event          string    `json:"event"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	DomainChanged  bool      `json:"domain_changed"`
	At             time.Time `json:"at"`
}

func (e *Engine) publish(ctx context.Context, ev Event, rec *ledger.PaymentRecord, out *Outcome) {
	if e.Publisher == nil {
		return
	}
	status := rec.Status
	if out.StatusWritten {
		status = ev.PaymentStatus
	}
	payload, err := json.Marshal(statusNotification{
		PaymentID:      ev.PaymentID,
		Event:          ev.Type,
		Status:         status,
		PreviousStatus: rec.Status,
		ReferenceType:  string(rec.ReferenceType),
		ReferenceID:    rec.ReferenceID,
		DomainChanged:  out.Domain.Changed,
		At:             time.Now().UTC(),
	})
	if err != nil {
		e.failed(out, StagePublish, err)
		return
	}

	timeout := e.PublishTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := e.Publisher.Publish(pctx, []byte(ev.PaymentID), payload); err != nil {
		e.failed(out, StagePublish, err)
	}
}

func (e *Engine) failed(out *Outcome, stage Stage, err error) {
	out.fail(stage, err)
	m.IncReconcileFailure(string(stage))
	e.Logger.Warn("reconcile step failed",
		zap.String("payment_id", out.PaymentID),
		zap.String("event", out.Event),
		zap.String("stage", string(stage)),
		zap.Error(err))
}
