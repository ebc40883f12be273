// Package ledger holds the local mirror of charges created through the gateway.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/asaas-gateway/internal/reference"
)

var ErrNotFound = errors.New("ledger: not found")

// PaymentRecord is one charge known to the system. Status mirrors the gateway's
// vocabulary verbatim.
type PaymentRecord struct {
	GatewayPaymentID string
	UserID           string
	CustomerID       string
	Status           string
	ReferenceType    reference.Type
	ReferenceID      string
	BillingType      string
	Value            decimal.Decimal
	DueDate          string // YYYY-MM-DD
	InvoiceURL       string
	BankSlipURL      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Customer links an application user to their gateway customer id.
type Customer struct {
	UserID            string
	GatewayCustomerID string
	CreatedAt         time.Time
}

type PaymentStore interface {
	FindPayment(ctx context.Context, gatewayPaymentID string) (*PaymentRecord, error)
	CreatePayment(ctx context.Context, rec *PaymentRecord) error
	// UpdatePaymentStatus is a single write of status and updated_at.
	UpdatePaymentStatus(ctx context.Context, gatewayPaymentID, status string) error
}

type CustomerStore interface {
	FindCustomer(ctx context.Context, userID string) (*Customer, error)
	CreateCustomer(ctx context.Context, c Customer) error
	// LinkProfile copies the gateway customer id onto the user's profile row.
	LinkProfile(ctx context.Context, userID, gatewayCustomerID string) error
}

type Store interface {
	PaymentStore
	CustomerStore
}
