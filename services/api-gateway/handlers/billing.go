package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/asaas-gateway/internal/billing"
	"github.com/example/asaas-gateway/internal/identity"
	apperr "github.com/example/asaas-gateway/pkg/errors"
)

type Authenticator interface {
	Verify(ctx context.Context, token string) (*identity.User, error)
}

type BillingService interface {
	SyncCustomer(ctx context.Context, userID string, req billing.CustomerRequest) (string, error)
	CreateCharge(ctx context.Context, userID string, req billing.ChargeRequest) (map[string]any, error)
}

type BillingDeps struct {
	Auth    Authenticator
	Billing BillingService
	Logger  *zap.Logger
}

// authenticate resolves the caller or writes the 401 itself.
func authenticate(w http.ResponseWriter, r *http.Request, auth Authenticator, log *zap.Logger) (*identity.User, bool) {
	token, ok := identity.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, apperr.New(apperr.CodeUnauthorized, http.StatusUnauthorized, "Unauthorized"))
		return nil, false
	}
	u, err := auth.Verify(r.Context(), token)
	if err != nil {
		if !errors.Is(err, identity.ErrUnauthorized) {
			log.Warn("identity verification failed", zap.Error(err))
		}
		writeError(w, apperr.New(apperr.CodeUnauthorized, http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}
	return u, true
}

// decodeBody treats an empty body as {} so field validation reports what is missing.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.New(apperr.CodeBadJSON, http.StatusBadRequest, "Invalid JSON")
}

func (d BillingDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func CustomersHandler(d BillingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.logger().With(zap.String("request_id", RequestIDFrom(r.Context())))
		u, ok := authenticate(w, r, d.Auth, log)
		if !ok {
			return
		}
		var in billing.CustomerRequest
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, err)
			return
		}
		id, err := d.Billing.SyncCustomer(r.Context(), u.ID, in)
		if err != nil {
			log.Warn("customer sync failed", zap.String("user_id", u.ID), zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CustomerOut{AsaasCustomerID: id})
	}
}

func ChargesHandler(d BillingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.logger().With(zap.String("request_id", RequestIDFrom(r.Context())))
		u, ok := authenticate(w, r, d.Auth, log)
		if !ok {
			return
		}
		var in billing.ChargeRequest
		if err := decodeBody(w, r, &in); err != nil {
			writeError(w, err)
			return
		}
		out, err := d.Billing.CreateCharge(r.Context(), u.ID, in)
		if err != nil {
			log.Warn("charge creation failed", zap.String("user_id", u.ID), zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
