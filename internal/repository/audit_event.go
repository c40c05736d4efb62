package repository

import (
	"context"
	"digital-storefront/internal/model"

	"gorm.io/gorm"
)

type AuditEventRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	ListByOrder(ctx context.Context, orderID string) ([]*model.AuditEvent, error)
}

type auditEventRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepositoryImpl{db: db}
}

func (r *auditEventRepositoryImpl) Append(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.AuditEvent, error) {
	var events []*model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
