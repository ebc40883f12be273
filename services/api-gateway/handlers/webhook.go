package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/asaas-gateway/internal/webhook"
	apperr "github.com/example/asaas-gateway/pkg/errors"
)

const (
	WebhookTokenHeader = "asaas-access-token"
	maxWebhookBody     = 1 << 20

	defaultReconcileTimeout = 30 * time.Second
)

type Reconciler interface {
	Reconcile(ctx context.Context, ev webhook.Event) (webhook.AckDecision, webhook.Outcome)
}

type WebhookDeps struct {
	Engine Reconciler
	// Token is the shared secret configured on the gateway side. Empty disables
	// the check.
	Token  string
	Logger *zap.Logger
	// ReconcileTimeout bounds one reconciliation. It is not tied to the
	// request, so a sender hanging up does not abort ledger writes.
	ReconcileTimeout time.Duration
}

var rejectionErrors = map[webhook.Reason]error{
	webhook.ReasonMalformedJSON:  apperr.New(apperr.CodeBadJSON, http.StatusBadRequest, "Invalid JSON"),
	webhook.ReasonMissingEvent:   apperr.New(apperr.CodeMissingEvent, http.StatusBadRequest, "event and payment required"),
	webhook.ReasonMissingPayment: apperr.New(apperr.CodeMissingPayment, http.StatusBadRequest, "event and payment required"),
}

// WebhookHandler receives gateway payment events. Anything that passes
// classification is acknowledged with 200.
func WebhookHandler(d WebhookDeps) http.HandlerFunc {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := d.ReconcileTimeout
	if timeout <= 0 {
		timeout = defaultReconcileTimeout
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "content-type, "+WebhookTokenHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, ErrorOut{Error: "Method not allowed"})
			return
		}
		log := logger.With(zap.String("request_id", RequestIDFrom(r.Context())))

		if d.Token != "" && !tokenMatches(r.Header.Get(WebhookTokenHeader), d.Token) {
			log.Warn("webhook token mismatch", zap.String("remote", r.RemoteAddr))
			writeError(w, apperr.New(apperr.CodeInvalidToken, http.StatusUnauthorized, "Invalid webhook token"))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, apperr.New(apperr.CodeBadJSON, http.StatusBadRequest, "Invalid JSON"))
			return
		}

		ev, err := webhook.Classify(body)
		if err != nil {
			var rej *webhook.Rejection
			if errors.As(err, &rej) {
				log.Info("webhook rejected", zap.String("reason", string(rej.Reason)))
				writeError(w, rejectionErrors[rej.Reason])
				return
			}
			writeError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()
		ack, out := d.Engine.Reconcile(ctx, ev)
		log.Info("webhook reconciled",
			zap.String("payment_id", ev.PaymentID),
			zap.String("event", ev.Type),
			zap.String("status", ev.PaymentStatus),
			zap.String("outcome", out.Label()),
		)
		writeJSON(w, http.StatusOK, ack)
	}
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
