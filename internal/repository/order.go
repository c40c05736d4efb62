package repository

import (
	"context"
	"digital-storefront/internal/model"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// OrderRepository reads the purchase store. The only write it offers to the
// service is completing an order; orders are created by checkout.
type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error)
	FindItem(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.OrderItem, error)
	GetOrderItems(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderItem, error)
	FindCompletedPurchase(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.Purchase, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, orderID string, at time.Time) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return r.conn(tx).WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, tx *gorm.DB, orderID string) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := r.conn(tx).WithContext(ctx).Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

// FindCompletedPurchase returns gorm.ErrRecordNotFound unless the order is
// COMPLETED and contains the product.
func (r *orderRepoImpl) FindCompletedPurchase(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.Purchase, error) {
	var order model.Order
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, model.OrderStatusCompleted).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	item, err := r.FindItem(ctx, tx, orderID, productID)
	if err != nil {
		return nil, err
	}

	amount := item.Amount()
	if amount < 0 || amount > math.MaxInt32 {
		return nil, fmt.Errorf("order %s item %s: amount %d out of range", orderID, productID, amount)
	}

	currency := item.Currency
	if currency == "" {
		currency = order.Currency
	}

	return &model.Purchase{
		OrderID:       order.OrderID,
		ProductID:     item.ProductID,
		CustomerEmail: order.CustomerEmail,
		Amount:        int32(amount),
		Currency:      currency,
		Processor:     order.Processor,
		ProcessorRef:  order.ProcessorRef,
		PurchasedAt:   order.PurchasedAt(),
	}, nil
}

// MarkCompleted moves a CREATED/APPROVED order to COMPLETED. It reports
// false when the order was not in one of those states.
func (r *orderRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, orderID string, at time.Time) (bool, error) {
	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where(`
			order_id = ?
			AND status IN ?
		`,
			orderID,
			[]model.OrderStatus{model.OrderStatusCreated, model.OrderStatusApproved},
		).
		Updates(map[string]interface{}{
			"status":       model.OrderStatusCompleted,
			"completed_at": at,
			"updated_at":   at,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
