// asaas-gateway/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// label "service" lets one query compare the binaries
	PaymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "requests_total",
			Help:      "Total HTTP requests per service",
		},
		[]string{"service", "status", "method"},
	)

	PaymentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payment",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency per service",
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"service", "status"},
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "webhook_events_total",
			Help:      "Gateway webhook events by event type and reconciliation outcome",
		},
		[]string{"event", "outcome"},
	)

	ReconcileFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "reconcile_failures_total",
			Help:      "Absorbed reconciliation failures by stage",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		PaymentRequestsTotal,
		PaymentRequestDuration,
		WebhookEventsTotal,
		ReconcileFailuresTotal,
	)
}

// OtherLabel replaces label values that come from outside the known set.
const OtherLabel = "other"

var knownMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true,
	"PATCH": true, "DELETE": true, "OPTIONS": true,
}

// MethodLabel keeps the method label bounded; clients can send any token as a method.
func MethodLabel(method string) string {
	if knownMethods[method] {
		return method
	}
	return OtherLabel
}

func IncRequest(service, status, method string) {
	PaymentRequestsTotal.WithLabelValues(service, status, MethodLabel(method)).Inc()
}
func ObserveDuration(service, status string, seconds float64) {
	PaymentRequestDuration.WithLabelValues(service, status).Observe(seconds)
}

// IncWebhookEvent expects event to be already reduced to a bounded label.
func IncWebhookEvent(event, outcome string) {
	WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}

func IncReconcileFailure(stage string) {
	ReconcileFailuresTotal.WithLabelValues(stage).Inc()
}
