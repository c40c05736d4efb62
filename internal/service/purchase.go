package service

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/common"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// PurchaseService reads completed purchases and turns them into
// ProductAccess records.
type PurchaseService interface {
	GetCompletedPurchase(ctx context.Context, orderID, productID string) (*model.Purchase, error)
	CompletePurchase(ctx context.Context, orderID, actor string) (*model.Order, error)
	// EnsureAccess returns the access record for a completed purchase,
	// creating it when the order was completed without one.
	EnsureAccess(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.ProductAccess, *model.Purchase, error)
}

type purchaseServiceImpl struct {
	db         *gorm.DB
	orderRepo  repository.OrderRepository
	accessRepo repository.AccessRepository
	recorder   *audit.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

func NewPurchaseService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	accessRepo repository.AccessRepository,
	recorder *audit.Recorder,
	logger *slog.Logger,
	now func() time.Time,
) PurchaseService {
	if now == nil {
		now = utcNow
	}
	return &purchaseServiceImpl{
		db:         db,
		orderRepo:  orderRepo,
		accessRepo: accessRepo,
		recorder:   recorder,
		logger:     logger.With("module", "purchases"),
		now:        now,
	}
}

func (s *purchaseServiceImpl) GetCompletedPurchase(ctx context.Context, orderID, productID string) (*model.Purchase, error) {
	if err := required(field{"orderId", orderID}, field{"productId", productID}); err != nil {
		return nil, err
	}

	purchase, err := s.orderRepo.FindCompletedPurchase(ctx, nil, orderID, productID)
	if err != nil {
		return nil, storeErr("find purchase", err, purchaseNotFound(orderID, productID))
	}

	return purchase, nil
}

func (s *purchaseServiceImpl) EnsureAccess(ctx context.Context, tx *gorm.DB, orderID, productID string) (*model.ProductAccess, *model.Purchase, error) {
	purchase, err := s.orderRepo.FindCompletedPurchase(ctx, tx, orderID, productID)
	if err != nil {
		return nil, nil, storeErr("find purchase", err, purchaseNotFound(orderID, productID))
	}

	access, err := s.accessRepo.Get(ctx, tx, orderID, productID)
	if err == nil {
		return access, purchase, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, storeErr("get product access", err, "")
	}

	err = s.accessRepo.CreateIfAbsent(ctx, tx, newAccess(purchase.OrderID, purchase.ProductID, purchase.CustomerEmail, purchase.PurchasedAt))
	if err != nil {
		return nil, nil, storeErr("create product access", err, "")
	}

	access, err = s.accessRepo.Get(ctx, tx, orderID, productID)
	if err != nil {
		return nil, nil, storeErr("get product access", err, purchaseNotFound(orderID, productID))
	}

	return access, purchase, nil
}

func (s *purchaseServiceImpl) CompletePurchase(ctx context.Context, orderID, actor string) (*model.Order, error) {
	if err := required(field{"orderId", orderID}); err != nil {
		return nil, err
	}

	var (
		order        *model.Order
		transitioned bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.orderRepo.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return storeErr("find order", err, fmt.Sprintf("order %s not found", orderID))
		}
		if current.Status == model.OrderStatusFailed {
			return common.InvalidState("order %s is %s", orderID, current.Status)
		}

		transitioned, err = s.orderRepo.MarkCompleted(ctx, tx, orderID, s.now())
		if err != nil {
			return storeErr("mark order completed", err, "")
		}

		order, err = s.orderRepo.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return storeErr("find order", err, "")
		}

		items, err := s.orderRepo.GetOrderItems(ctx, tx, orderID)
		if err != nil {
			return storeErr("get order items", err, "")
		}

		// grant access for every item; rows that already exist keep their state
		for _, item := range items {
			err = s.accessRepo.CreateIfAbsent(ctx, tx, newAccess(order.OrderID, item.ProductID, order.CustomerEmail, order.PurchasedAt()))
			if err != nil {
				return storeErr("create product access", err, "")
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.logger.InfoContext(ctx, "order completed", "operation", "complete_purchase", "order_id", orderID, "actor", actor)
		s.recorder.Record(ctx, audit.Event{
			Kind:       audit.KindPurchaseCompleted,
			OrderID:    orderID,
			Actor:      actor,
			OccurredAt: order.PurchasedAt(),
			Metadata: map[string]any{
				"amount":   order.Amount,
				"currency": order.Currency,
			},
		})
	}

	return order, nil
}

func newAccess(orderID, productID, email string, purchasedAt time.Time) *model.ProductAccess {
	return &model.ProductAccess{
		OrderID:        orderID,
		ProductID:      productID,
		CustomerEmail:  email,
		RefundEligible: true,
		RefundStatus:   model.RefundStatusNone,
		CreatedAt:      purchasedAt,
		UpdatedAt:      purchasedAt,
	}
}

func purchaseNotFound(orderID, productID string) string {
	return fmt.Sprintf("no completed purchase of %s in order %s", productID, orderID)
}
