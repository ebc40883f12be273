// Package billing holds the two outbound use cases: syncing a user's gateway
// customer and creating a charge.
package billing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/asaas-gateway/internal/gateway"
	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
	apperr "github.com/example/asaas-gateway/pkg/errors"
)

// Gateway is the subset of the Asaas client the use cases need.
type Gateway interface {
	Configured() bool
	CreateCustomer(ctx context.Context, in gateway.CustomerInput) (string, error)
	CreateCharge(ctx context.Context, in gateway.ChargeInput) (*gateway.Charge, error)
}

type Service struct {
	Store   ledger.Store
	Gateway Gateway
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewService(store ledger.Store, gw Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: store, Gateway: gw, Logger: logger, Now: time.Now}
}

var errNotConfigured = apperr.New(apperr.CodeNotConfigured, http.StatusInternalServerError, "ASAAS_API_KEY not configured")

type CustomerRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	CpfCnpj     string `json:"cpfCnpj"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone"`
}

// SyncCustomer returns the user's gateway customer id, creating the customer on
// first use. The profile link is refreshed either way.
func (s *Service) SyncCustomer(ctx context.Context, userID string, req CustomerRequest) (string, error) {
	if err := check(req); err != nil {
		return "", err
	}
	if !s.Gateway.Configured() {
		return "", errNotConfigured
	}
	log := s.Logger.With(zap.String("user_id", userID))

	existing, err := s.Store.FindCustomer(ctx, userID)
	switch {
	case err == nil && existing.GatewayCustomerID != "":
		s.link(ctx, log, userID, existing.GatewayCustomerID)
		return existing.GatewayCustomerID, nil
	case err != nil && !errors.Is(err, ledger.ErrNotFound):
		return "", apperr.Wrap(apperr.CodeInternal, "customer lookup failed", err)
	}

	id, err := s.Gateway.CreateCustomer(ctx, gateway.CustomerInput{
		Name:        req.Name,
		CpfCnpj:     req.CpfCnpj,
		Email:       req.Email,
		MobilePhone: req.MobilePhone,
	})
	if err != nil {
		return "", err
	}

	if err := s.Store.CreateCustomer(ctx, ledger.Customer{UserID: userID, GatewayCustomerID: id}); err != nil {
		log.Error("persist customer failed", zap.String("asaas_customer_id", id), zap.Error(err))
	}
	s.link(ctx, log, userID, id)
	log.Info("customer synced", zap.String("asaas_customer_id", id))
	return id, nil
}

func (s *Service) link(ctx context.Context, log *zap.Logger, userID, customerID string) {
	if err := s.Store.LinkProfile(ctx, userID, customerID); err != nil {
		log.Warn("profile link failed", zap.String("asaas_customer_id", customerID), zap.Error(err))
	}
}

type ChargeRequest struct {
	CustomerID    string          `json:"asaas_customer_id"`
	Value         decimal.Decimal `json:"value"`
	BillingType   string          `json:"billingType"`
	DueDate       string          `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
}

// CreateCharge creates a charge at the gateway and mirrors it into the ledger.
// The returned body is the gateway's response with id, status and the two urls
// guaranteed at the top level.
func (s *Service) CreateCharge(ctx context.Context, userID string, req ChargeRequest) (map[string]any, error) {
	if !req.Value.IsPositive() {
		return nil, apperr.New(apperr.CodeInvalidInput, http.StatusBadRequest, "value is required and must be positive")
	}
	if err := check(req); err != nil {
		return nil, err
	}
	if !s.Gateway.Configured() {
		return nil, errNotConfigured
	}
	log := s.Logger.With(zap.String("user_id", userID))

	customerID := req.CustomerID
	if customerID == "" {
		c, err := s.Store.FindCustomer(ctx, userID)
		switch {
		case errors.Is(err, ledger.ErrNotFound) || (err == nil && c.GatewayCustomerID == ""):
			return nil, apperr.New(apperr.CodeCustomerNeeded, http.StatusBadRequest, "asaas_customer_id required or sync customer first")
		case err != nil:
			return nil, apperr.Wrap(apperr.CodeInternal, "customer lookup failed", err)
		}
		customerID = c.GatewayCustomerID
	}

	due := req.DueDate
	if due == "" {
		due = gateway.DefaultDueDate(s.Now())
	}
	billingType := gateway.BillingType(req.BillingType)

	ch, err := s.Gateway.CreateCharge(ctx, gateway.ChargeInput{
		Customer:    customerID,
		BillingType: billingType,
		Value:       req.Value,
		DueDate:     due,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if ch.ID != "" {
		rec := &ledger.PaymentRecord{
			GatewayPaymentID: ch.ID,
			UserID:           userID,
			CustomerID:       customerID,
			Status:           ch.Status,
			ReferenceType:    reference.Type(req.ReferenceType),
			ReferenceID:      req.ReferenceID,
			BillingType:      billingType,
			Value:            req.Value,
			DueDate:          due,
			InvoiceURL:       ch.InvoiceURL,
			BankSlipURL:      ch.BankSlipURL,
		}
		if err := s.Store.CreatePayment(ctx, rec); err != nil {
			log.Error("persist payment failed", zap.String("payment_id", ch.ID), zap.Error(err))
		} else {
			log.Info("charge created",
				zap.String("payment_id", ch.ID),
				zap.String("billing_type", billingType),
				zap.String("reference_type", req.ReferenceType),
				zap.String("reference_id", req.ReferenceID),
			)
		}
	} else {
		log.Warn("gateway returned no payment id", zap.String("asaas_customer_id", customerID))
	}

	return chargeResponse(ch), nil
}

// chargeResponse lays the gateway body over the derived fields, so a key the
// gateway sent itself is passed through untouched.
func chargeResponse(ch *gateway.Charge) map[string]any {
	out := make(map[string]any, len(ch.Raw)+4)
	for k, v := range map[string]string{
		"id":          ch.ID,
		"status":      ch.Status,
		"invoiceUrl":  ch.InvoiceURL,
		"bankSlipUrl": ch.BankSlipURL,
	} {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range ch.Raw {
		out[k] = v
	}
	return out
}
