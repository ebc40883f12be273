package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
)

// setupPool needs a disposable database in TEST_DATABASE_URL.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS orders (id TEXT PRIMARY KEY, status TEXT, updated_at TIMESTAMPTZ)`,
		`CREATE TABLE IF NOT EXISTS consultations (id TEXT PRIMARY KEY, status TEXT, updated_at TIMESTAMPTZ)`,
		`CREATE TABLE IF NOT EXISTS order_history (id TEXT PRIMARY KEY, order_id TEXT, previous_status TEXT, new_status TEXT, created_at TIMESTAMPTZ)`,
		`CREATE TABLE IF NOT EXISTS profiles (id TEXT PRIMARY KEY, asaas_customer_id TEXT)`,
	} {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return pool
}

func TestLedgerStore_PaymentLifecycle(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewLedgerStore(pool)
	id := "pay_" + uuid.NewString()

	_, err := s.FindPayment(ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, s.CreatePayment(ctx, &ledger.PaymentRecord{
		GatewayPaymentID: id,
		UserID:           "user-1",
		CustomerID:       "cus_1",
		Status:           "PENDING",
		ReferenceType:    reference.TypeOrder,
		ReferenceID:      "ord-1",
		BillingType:      "PIX",
		Value:            decimal.RequireFromString("149.90"),
		DueDate:          "2026-10-18",
	}))

	require.NoError(t, s.UpdatePaymentStatus(ctx, id, "CONFIRMED"))

	rec, err := s.FindPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", rec.Status)
	assert.Equal(t, reference.TypeOrder, rec.ReferenceType)
	assert.Equal(t, "2026-10-18", rec.DueDate)
	assert.True(t, rec.Value.Equal(decimal.RequireFromString("149.90")))

	assert.ErrorIs(t, s.UpdatePaymentStatus(ctx, "pay_missing_"+uuid.NewString(), "X"), ledger.ErrNotFound)
}

func TestLedgerStore_Customers(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewLedgerStore(pool)
	user := "user-" + uuid.NewString()

	_, err := s.FindCustomer(ctx, user)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, s.CreateCustomer(ctx, ledger.Customer{UserID: user, GatewayCustomerID: "cus_a"}))
	require.NoError(t, s.CreateCustomer(ctx, ledger.Customer{UserID: user, GatewayCustomerID: "cus_b"}))

	c, err := s.FindCustomer(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "cus_a", c.GatewayCustomerID)
	assert.NoError(t, s.LinkProfile(ctx, user, "cus_a"))
}

func TestDomainStore_ApproveOrderIsConditional(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	s := NewDomainStore(pool)
	id := "ord-" + uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO orders (id, status) VALUES ($1, 'pending')`, id)
	require.NoError(t, err)

	changed, err := s.ApproveOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.ApproveOrder(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.ConfirmConsultation(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, reference.ErrNotFound)

	assert.NoError(t, s.AppendOrderHistory(ctx, id, reference.OrderPending, reference.OrderApproved))
}
