// Package sqlite implements the ledger and domain stores with gorm on SQLite, for
// single-node deployments and local development.
package sqlite

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRow struct {
	AsaasPaymentID  string          `gorm:"column:asaas_payment_id;primaryKey;type:varchar(64)"`
	UserID          *string         `gorm:"column:user_id;type:varchar(64)"`
	AsaasCustomerID *string         `gorm:"column:asaas_customer_id;type:varchar(64)"`
	ReferenceType   *string         `gorm:"column:reference_type;type:varchar(32);index:ix_asaas_payments_reference,priority:1"`
	ReferenceID     *string         `gorm:"column:reference_id;type:varchar(64);index:ix_asaas_payments_reference,priority:2"`
	BillingType     *string         `gorm:"column:billing_type;type:varchar(32)"`
	Value           decimal.Decimal `gorm:"column:value;type:numeric(12,2);not null"`
	Status          *string         `gorm:"column:status;type:varchar(64)"`
	DueDate         *string         `gorm:"column:due_date;type:varchar(10)"`
	InvoiceURL      *string         `gorm:"column:invoice_url;type:text"`
	BankSlipURL     *string         `gorm:"column:bank_slip_url;type:text"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentRow) TableName() string { return "asaas_payments" }

type CustomerRow struct {
	UserID          string    `gorm:"column:user_id;primaryKey;type:varchar(64)"`
	AsaasCustomerID string    `gorm:"column:asaas_customer_id;type:varchar(64);not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CustomerRow) TableName() string { return "asaas_customers" }

type ProfileRow struct {
	ID              string  `gorm:"column:id;primaryKey;type:varchar(64)"`
	AsaasCustomerID *string `gorm:"column:asaas_customer_id;type:varchar(64)"`
}

func (ProfileRow) TableName() string { return "profiles" }

type OrderRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Status    string    `gorm:"column:status;type:varchar(32)"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (OrderRow) TableName() string { return "orders" }

type OrderHistoryRow struct {
	ID             string    `gorm:"column:id;primaryKey;type:char(36)"`
	OrderID        string    `gorm:"column:order_id;type:varchar(64);index"`
	PreviousStatus string    `gorm:"column:previous_status;type:varchar(32)"`
	NewStatus      string    `gorm:"column:new_status;type:varchar(32)"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (OrderHistoryRow) TableName() string { return "order_history" }

type ConsultationRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Status    string    `gorm:"column:status;type:varchar(32)"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ConsultationRow) TableName() string { return "consultations" }
