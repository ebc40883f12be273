package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Service string
	Webhook WebhookDeps
	Billing BillingDeps
	Logger  *zap.Logger
}

func NewRouter(d Deps) *mux.Router {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Use(RequestID, Observe(d.Service, logger))
	r.MethodNotAllowedHandler = MethodNotAllowed()
	r.NotFoundHandler = NotFound()

	// metrics & health
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthOut{OK: true, Service: d.Service, TS: time.Now().UTC().Format(time.RFC3339)})
	}).Methods(http.MethodGet)

	// gateway callbacks
	r.HandleFunc("/webhooks/asaas", WebhookHandler(d.Webhook)).Methods(http.MethodPost, http.MethodOptions)

	// API
	if d.Billing.Billing != nil {
		r.HandleFunc("/api/customers", CustomersHandler(d.Billing)).Methods(http.MethodPost)
		r.HandleFunc("/api/charges", ChargesHandler(d.Billing)).Methods(http.MethodPost)
	}
	return r
}
