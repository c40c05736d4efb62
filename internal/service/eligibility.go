package service

import (
	"context"
	"digital-storefront/internal/metrics"
	"digital-storefront/internal/model"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxRefundHours is the refund window measured from purchase.
const MaxRefundHours = 24

const (
	ReasonAccessed      = "already accessed/downloaded"
	ReasonWindowExpired = "window expired"
	ReasonWithinWindow  = "within refund window"
)

type Eligibility struct {
	Eligible      bool
	Reason        string
	TimeRemaining *float64 // hours, set only when eligible
}

// Evaluate is the single place refund eligibility is decided. The first
// matching rule wins.
func Evaluate(access *model.ProductAccess, now time.Time) Eligibility {
	if access.Accessed() {
		return Eligibility{Reason: ReasonAccessed}
	}

	if access.RefundStatus != model.RefundStatusNone && access.RefundStatus != "" {
		return Eligibility{Reason: fmt.Sprintf("refund already %s", access.RefundStatus)}
	}

	// a purchase stamped ahead of now counts as just made
	hoursSincePurchase := math.Max(now.Sub(access.CreatedAt).Hours(), 0)
	if hoursSincePurchase > MaxRefundHours {
		return Eligibility{Reason: ReasonWindowExpired}
	}

	remaining := decimal.NewFromFloat(MaxRefundHours - hoursSincePurchase).Round(2).InexactFloat64()
	return Eligibility{
		Eligible:      true,
		Reason:        ReasonWithinWindow,
		TimeRemaining: &remaining,
	}
}

type EligibilityEvaluator interface {
	Evaluate(access *model.ProductAccess, now time.Time) Eligibility
	Check(ctx context.Context, orderID, productID string) (Eligibility, error)
}

type eligibilityEvaluatorImpl struct {
	purchases PurchaseService
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewEligibilityEvaluator(purchases PurchaseService, m *metrics.Metrics, now func() time.Time) EligibilityEvaluator {
	if now == nil {
		now = utcNow
	}
	return &eligibilityEvaluatorImpl{
		purchases: purchases,
		metrics:   m,
		now:       now,
	}
}

func (e *eligibilityEvaluatorImpl) Evaluate(access *model.ProductAccess, now time.Time) Eligibility {
	return Evaluate(access, now)
}

func (e *eligibilityEvaluatorImpl) Check(ctx context.Context, orderID, productID string) (Eligibility, error) {
	if err := required(field{"orderId", orderID}, field{"productId", productID}); err != nil {
		return Eligibility{}, err
	}

	access, _, err := e.purchases.EnsureAccess(ctx, nil, orderID, productID)
	if err != nil {
		return Eligibility{}, err
	}

	verdict := Evaluate(access, e.now())
	e.metrics.EligibilityChecked(verdict.Eligible)
	return verdict, nil
}
