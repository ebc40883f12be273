package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/asaas-gateway/internal/reference"
)

type DomainStore struct {
	db *gorm.DB
}

func NewDomainStore(db *gorm.DB) *DomainStore {
	return &DomainStore{db: db}
}

func (s *DomainStore) ApproveOrder(ctx context.Context, id string) (bool, error) {
	return s.setStatus(ctx, &OrderRow{}, id, reference.OrderApproved)
}

func (s *DomainStore) ConfirmConsultation(ctx context.Context, id string) (bool, error) {
	return s.setStatus(ctx, &ConsultationRow{}, id, reference.ConsultationConfirmed)
}

func (s *DomainStore) AppendOrderHistory(ctx context.Context, orderID, from, to string) error {
	row := OrderHistoryRow{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		PreviousStatus: from,
		NewStatus:      to,
		CreatedAt:      time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert order history %s: %w", orderID, err)
	}
	return nil
}

func (s *DomainStore) setStatus(ctx context.Context, model any, id, status string) (bool, error) {
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ? AND (status IS NULL OR status <> ?)", id, status).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup %s: %w", id, err)
	}
	if n == 0 {
		return false, reference.ErrNotFound
	}
	return false, nil
}
