package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
)

type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) FindPayment(ctx context.Context, id string) (*ledger.PaymentRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT asaas_payment_id,
		        COALESCE(user_id, ''),
		        COALESCE(asaas_customer_id, ''),
		        COALESCE(status, ''),
		        COALESCE(reference_type, ''),
		        COALESCE(reference_id, ''),
		        COALESCE(billing_type, ''),
		        value::text,
		        COALESCE(to_char(due_date, 'YYYY-MM-DD'), ''),
		        COALESCE(invoice_url, ''),
		        COALESCE(bank_slip_url, ''),
		        created_at,
		        updated_at
		 FROM asaas_payments
		 WHERE asaas_payment_id = $1`,
		id,
	)

	var (
		rec     ledger.PaymentRecord
		refType string
		value   string
	)
	if err := row.Scan(
		&rec.GatewayPaymentID,
		&rec.UserID,
		&rec.CustomerID,
		&rec.Status,
		&refType,
		&rec.ReferenceID,
		&rec.BillingType,
		&value,
		&rec.DueDate,
		&rec.InvoiceURL,
		&rec.BankSlipURL,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("find payment %s: %w", id, err)
	}

	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("payment %s value %q: %w", id, value, err)
	}
	rec.Value = v
	rec.ReferenceType = reference.ParseType(refType)
	return &rec, nil
}

func (s *LedgerStore) CreatePayment(ctx context.Context, rec *ledger.PaymentRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO asaas_payments
		 (asaas_payment_id, user_id, asaas_customer_id, reference_type, reference_id,
		  billing_type, value, status, due_date, invoice_url, bank_slip_url)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
		         NULLIF($6, ''), $7::numeric, NULLIF($8, ''), NULLIF($9, '')::date,
		         NULLIF($10, ''), NULLIF($11, ''))`,
		rec.GatewayPaymentID,
		rec.UserID,
		rec.CustomerID,
		string(rec.ReferenceType),
		rec.ReferenceID,
		rec.BillingType,
		rec.Value.String(),
		rec.Status,
		rec.DueDate,
		rec.InvoiceURL,
		rec.BankSlipURL,
	)
	if err != nil {
		return fmt.Errorf("insert payment %s: %w", rec.GatewayPaymentID, err)
	}
	return nil
}

func (s *LedgerStore) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE asaas_payments
		 SET status = $2, updated_at = now()
		 WHERE asaas_payment_id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update payment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) FindCustomer(ctx context.Context, userID string) (*ledger.Customer, error) {
	var c ledger.Customer
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, asaas_customer_id, created_at
		 FROM asaas_customers
		 WHERE user_id = $1`,
		userID,
	).Scan(&c.UserID, &c.GatewayCustomerID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", userID, err)
	}
	return &c, nil
}

func (s *LedgerStore) CreateCustomer(ctx context.Context, c ledger.Customer) error {
	// concurrent syncs for the same user keep the first id
	_, err := s.pool.Exec(ctx,
		`INSERT INTO asaas_customers (user_id, asaas_customer_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		c.UserID, c.GatewayCustomerID,
	)
	if err != nil {
		return fmt.Errorf("insert customer %s: %w", c.UserID, err)
	}
	return nil
}

func (s *LedgerStore) LinkProfile(ctx context.Context, userID, customerID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE profiles SET asaas_customer_id = $2 WHERE id = $1`,
		userID, customerID,
	)
	if err != nil {
		return fmt.Errorf("link profile %s: %w", userID, err)
	}
	return nil
}
