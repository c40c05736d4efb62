package repository

import (
	"context"
	"digital-storefront/internal/model"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessRepository persists ProductAccess rows. Every mutation is a
// conditional update; the bool results report whether a row changed.
type AccessRepository interface {
	Get(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.ProductAccess, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, access *model.ProductAccess) error
	SetFirstAccess(ctx context.Context, orderID, productID string, accessType model.AccessType, at time.Time) (bool, error)
	MarkRefundRequested(ctx context.Context, tx *gorm.DB, orderID, productID string, at time.Time) (bool, error)
	SetRefundStatus(ctx context.Context, tx *gorm.DB, orderID, productID string, from, to model.RefundStatus, at time.Time) (bool, error)
}

type accessRepoImpl struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) AccessRepository {
	return &accessRepoImpl{
		db: db,
	}
}

func (r *accessRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *accessRepoImpl) Get(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.ProductAccess, error) {
	var access model.ProductAccess
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&access).Error

	if err != nil {
		return nil, err
	}

	return &access, nil
}

// CreateIfAbsent inserts the row unless one exists for the same
// (order, product); an existing row is left untouched.
func (r *accessRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, access *model.ProductAccess) error {
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(access).Error
}

func accessColumn(accessType model.AccessType) (string, error) {
	switch accessType {
	case model.AccessTypeDownload:
		return "downloaded_at", nil
	case model.AccessTypeAccess:
		return "accessed_at", nil
	}
	return "", fmt.Errorf("access type %q has no timestamp column", accessType)
}

// SetFirstAccess stamps the access column only while it is NULL, so the
// stored time is always the first access.
func (r *accessRepoImpl) SetFirstAccess(ctx context.Context, orderID, productID string, accessType model.AccessType, at time.Time) (bool, error) {
	column, err := accessColumn(accessType)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&model.ProductAccess{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Where(column + " IS NULL").
		Updates(map[string]interface{}{
			column:            at,
			"refund_eligible": false,
			"updated_at":      at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkRefundRequested flips refund_status none -> requested while the
// product is still unaccessed.
func (r *accessRepoImpl) MarkRefundRequested(ctx context.Context, tx *gorm.DB, orderID, productID string, at time.Time) (bool, error) {
	result := r.conn(tx).WithContext(ctx).Model(&model.ProductAccess{}).
		Where(`
			order_id = ?
			AND product_id = ?
			AND refund_status = ?
			AND accessed_at IS NULL
			AND downloaded_at IS NULL
		`,
			orderID,
			productID,
			model.RefundStatusNone,
		).
		Updates(map[string]interface{}{
			"refund_status": model.RefundStatusRequested,
			"updated_at":    at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *accessRepoImpl) SetRefundStatus(ctx context.Context, tx *gorm.DB, orderID, productID string, from, to model.RefundStatus, at time.Time) (bool, error) {
	if to == model.RefundStatusNone {
		return false, fmt.Errorf("refund status cannot return to %q", model.RefundStatusNone)
	}

	result := r.conn(tx).WithContext(ctx).Model(&model.ProductAccess{}).
		Where("order_id = ? AND product_id = ? AND refund_status = ?", orderID, productID, from).
		Updates(map[string]interface{}{
			"refund_status": to,
			"updated_at":    at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
