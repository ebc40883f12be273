// services/api-gateway/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/asaas-gateway/internal/billing"
	"github.com/example/asaas-gateway/internal/config"
	"github.com/example/asaas-gateway/internal/gateway"
	"github.com/example/asaas-gateway/internal/identity"
	"github.com/example/asaas-gateway/internal/reference"
	"github.com/example/asaas-gateway/internal/store"
	"github.com/example/asaas-gateway/internal/webhook"
	"github.com/example/asaas-gateway/pkg/logging"
	"github.com/example/asaas-gateway/services/api-gateway/handlers"
	"github.com/example/asaas-gateway/services/api-gateway/queue"
)

const serviceName = "api-gateway"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[%s] config: %v", serviceName, err)
	}
	logger, err := logging.New(serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatalf("[%s] logger: %v", serviceName, err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[%s] open %s store: %v", serviceName, cfg.StoreDriver, err)
	}
	defer stores.Close()

	engine := webhook.NewEngine(stores.Ledger, reference.NewResolver(stores.Domain), logger.Named("webhook"))
	engine.Monotonic = cfg.WebhookMonotonic
	if cfg.KafkaEnabled() {
		bus := queue.New(cfg.KafkaBrokers, cfg.KafkaStatusTopic)
		defer func() { _ = bus.Close() }()
		engine.Publisher = bus
	}
	if cfg.WebhookToken == "" {
		logger.Warn("ASAAS_WEBHOOK_ACCESS_TOKEN not set; webhook endpoint accepts unauthenticated calls")
	}

	deps := handlers.Deps{
		Service: serviceName,
		Logger:  logger,
		Webhook: handlers.WebhookDeps{
			Engine: engine,
			Token:            cfg.WebhookToken,
			Logger:           logger.Named("webhook"),
			ReconcileTimeout: cfg.ReconcileTimeout,
		},
	}
	if cfg.AuthBaseURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
		gw := gateway.New(gateway.Config{
			BaseURL:   cfg.AsaasBaseURL,
			APIKey:    cfg.AsaasAPIKey,
			UserAgent: cfg.AsaasUserAgent,
		}, httpClient)
		deps.Billing = handlers.BillingDeps{
			Auth:    identity.NewVerifier(cfg.AuthBaseURL, cfg.AuthAPIKey, httpClient),
			Billing: billing.NewService(stores.Ledger, gw, logger.Named("billing")),
			Logger:  logger.Named("billing"),
		}
	} else {
		logger.Warn("AUTH_BASE_URL not set; customer and charge endpoints disabled")
	}

	srv := newServer(cfg, corsFor(handlers.WebhookTokenHeader).Handler(handlers.NewRouter(deps)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	logger.Info("bye")
}

// newServer bounds how long a client may take to send a request, so slow
// senders cannot pin connections on the public webhook.
func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
		ReadTimeout:       cfg.HTTPReadTimeout,
	}
}

// corsFor is AllowAll plus the gateway's webhook secret header.
func corsFor(extraHeaders ...string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: append([]string{"Authorization", "Content-Type", handlers.RequestIDHeader}, extraHeaders...),
	})
}
