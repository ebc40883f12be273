package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/asaas-gateway/internal/reference"
)

// DomainStore writes the application's orders and consultations tables.
type DomainStore struct {
	pool *pgxpool.Pool
}

func NewDomainStore(pool *pgxpool.Pool) *DomainStore {
	return &DomainStore{pool: pool}
}

func (s *DomainStore) ApproveOrder(ctx context.Context, id string) (bool, error) {
	return s.setStatus(ctx, "orders", id, reference.OrderApproved)
}

func (s *DomainStore) ConfirmConsultation(ctx context.Context, id string) (bool, error) {
	return s.setStatus(ctx, "consultations", id, reference.ConsultationConfirmed)
}

func (s *DomainStore) AppendOrderHistory(ctx context.Context, orderID, from, to string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO order_history (id, order_id, previous_status, new_status, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		uuid.NewString(), orderID, from, to,
	)
	if err != nil {
		return fmt.Errorf("insert order history %s: %w", orderID, err)
	}
	return nil
}

// setStatus is a conditional single-row update; repeating it is a no-op.
// table is never caller-controlled.
func (s *DomainStore) setStatus(ctx context.Context, table, id, status string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE `+table+`
		 SET status = $2, updated_at = now()
		 WHERE id = $1 AND status IS DISTINCT FROM $2`,
		id, status,
	)
	if err != nil {
		return false, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup %s %s: %w", table, id, err)
	}
	if !exists {
		return false, reference.ErrNotFound
	}
	return false, nil
}
