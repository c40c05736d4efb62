package repository

import (
	"context"
	"digital-storefront/internal/model"

	"gorm.io/gorm"
)

type RefundFilter struct {
	Status        model.RequestStatus
	OrderID       string
	CustomerEmail string
	Limit         int
}

type RefundRepository interface {
	Create(ctx context.Context, tx *gorm.DB, req *model.RefundRequest) error
	Get(ctx context.Context, tx *gorm.DB, id string) (*model.RefundRequest, error)
	List(ctx context.Context, filter RefundFilter) ([]*model.RefundRequest, error)
	Transition(ctx context.Context, tx *gorm.DB, id string, from, to model.RequestStatus, fields map[string]interface{}) (bool, error)
}

type refundRepoImpl struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepoImpl{
		db: db,
	}
}

func (r *refundRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *refundRepoImpl) Create(ctx context.Context, tx *gorm.DB, req *model.RefundRequest) error {
	return r.conn(tx).WithContext(ctx).Create(req).Error
}

func (r *refundRepoImpl) Get(ctx context.Context, tx *gorm.DB, id string) (*model.RefundRequest, error) {
	var req model.RefundRequest
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error

	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *refundRepoImpl) List(ctx context.Context, filter RefundFilter) ([]*model.RefundRequest, error) {
	q := r.db.WithContext(ctx).Model(&model.RefundRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OrderID != "" {
		q = q.Where("order_id = ?", filter.OrderID)
	}
	if filter.CustomerEmail != "" {
		q = q.Where("LOWER(customer_email) = LOWER(?)", filter.CustomerEmail)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var reqs []*model.RefundRequest
	if err := q.Order("requested_at desc").Find(&reqs).Error; err != nil {
		return nil, err
	}

	return reqs, nil
}

// Transition moves a request from one status to another only if it is
// still in the from status. fields are written alongside the status.
func (r *refundRepoImpl) Transition(ctx context.Context, tx *gorm.DB, id string, from, to model.RequestStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.conn(tx).WithContext(ctx).Model(&model.RefundRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
