package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
)

type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) FindPayment(ctx context.Context, id string) (*ledger.PaymentRecord, error) {
	var row PaymentRow
	err := s.db.WithContext(ctx).Where("asaas_payment_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", id, err)
	}

	return &ledger.PaymentRecord{
		GatewayPaymentID: row.AsaasPaymentID,
		UserID:           lo.FromPtr(row.UserID),
		CustomerID:       lo.FromPtr(row.AsaasCustomerID),
		Status:           lo.FromPtr(row.Status),
		ReferenceType:    reference.ParseType(lo.FromPtr(row.ReferenceType)),
		ReferenceID:      lo.FromPtr(row.ReferenceID),
		BillingType:      lo.FromPtr(row.BillingType),
		Value:            row.Value,
		DueDate:          lo.FromPtr(row.DueDate),
		InvoiceURL:       lo.FromPtr(row.InvoiceURL),
		BankSlipURL:      lo.FromPtr(row.BankSlipURL),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func (s *LedgerStore) CreatePayment(ctx context.Context, rec *ledger.PaymentRecord) error {
	row := PaymentRow{
		AsaasPaymentID:  rec.GatewayPaymentID,
		UserID:          lo.EmptyableToPtr(rec.UserID),
		AsaasCustomerID: lo.EmptyableToPtr(rec.CustomerID),
		ReferenceType:   lo.EmptyableToPtr(string(rec.ReferenceType)),
		ReferenceID:     lo.EmptyableToPtr(rec.ReferenceID),
		BillingType:     lo.EmptyableToPtr(rec.BillingType),
		Value:           rec.Value,
		Status:          lo.EmptyableToPtr(rec.Status),
		DueDate:         lo.EmptyableToPtr(rec.DueDate),
		InvoiceURL:      lo.EmptyableToPtr(rec.InvoiceURL),
		BankSlipURL:     lo.EmptyableToPtr(rec.BankSlipURL),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert payment %s: %w", rec.GatewayPaymentID, err)
	}
	return nil
}

func (s *LedgerStore) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	res := s.db.WithContext(ctx).Model(&PaymentRow{}).
		Where("asaas_payment_id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update payment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) FindCustomer(ctx context.Context, userID string) (*ledger.Customer, error) {
	var row CustomerRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer %s: %w", userID, err)
	}
	return &ledger.Customer{
		UserID:            row.UserID,
		GatewayCustomerID: row.AsaasCustomerID,
		CreatedAt:         row.CreatedAt,
	}, nil
}

func (s *LedgerStore) CreateCustomer(ctx context.Context, c ledger.Customer) error {
	row := CustomerRow{UserID: c.UserID, AsaasCustomerID: c.GatewayCustomerID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("insert customer %s: %w", c.UserID, err)
	}
	return nil
}

func (s *LedgerStore) LinkProfile(ctx context.Context, userID, customerID string) error {
	err := s.db.WithContext(ctx).Model(&ProfileRow{}).
		Where("id = ?", userID).
		Update("asaas_customer_id", customerID).Error
	if err != nil {
		return fmt.Errorf("link profile %s: %w", userID, err)
	}
	return nil
}
