package service

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/common"
	"digital-storefront/internal/metrics"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"log/slog"
	"time"
)

// AccessTracker records the first download and first in-app access of a
// purchased product. Preview is accepted and ignored.
type AccessTracker interface {
	// RecordAccess reports whether this call was the first of its type.
	RecordAccess(ctx context.Context, orderID, productID string, accessType model.AccessType) (bool, error)
}

type accessTrackerImpl struct {
	purchases  PurchaseService
	accessRepo repository.AccessRepository
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewAccessTracker(
	purchases PurchaseService,
	accessRepo repository.AccessRepository,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
	now func() time.Time,
) AccessTracker {
	if now == nil {
		now = utcNow
	}
	return &accessTrackerImpl{
		purchases:  purchases,
		accessRepo: accessRepo,
		recorder:   recorder,
		metrics:    m,
		logger:     logger.With("module", "access"),
		now:        now,
	}
}

func (t *accessTrackerImpl) RecordAccess(ctx context.Context, orderID, productID string, accessType model.AccessType) (bool, error) {
	if err := required(field{"orderId", orderID}, field{"productId", productID}, field{"accessType", string(accessType)}); err != nil {
		return false, err
	}
	if _, ok := model.ParseAccessType(string(accessType)); !ok {
		return false, common.Validation("unknown accessType %q", accessType)
	}

	if _, _, err := t.purchases.EnsureAccess(ctx, nil, orderID, productID); err != nil {
		return false, err
	}

	if accessType == model.AccessTypePreview {
		t.metrics.AccessRecorded(string(accessType), false)
		return false, nil
	}

	at := t.now()
	first, err := t.accessRepo.SetFirstAccess(ctx, orderID, productID, accessType, at)
	if err != nil {
		return false, storeErr("record access", err, "")
	}

	t.metrics.AccessRecorded(string(accessType), first)
	if !first {
		return false, nil
	}

	t.logger.InfoContext(ctx, "first access recorded",
		"operation", "record_access",
		"order_id", orderID,
		"product_id", productID,
		"access_type", accessType,
	)
	t.recorder.Record(ctx, audit.Event{
		Kind:       audit.KindAccessRecorded,
		OrderID:    orderID,
		ProductID:  productID,
		OccurredAt: at,
		Metadata:   map[string]any{"accessType": string(accessType)},
	})

	return true, nil
}
