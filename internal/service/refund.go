package service

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/client"
	"digital-storefront/internal/common"
	"digital-storefront/internal/metrics"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateRefundInput struct {
	OrderID       string
	ProductID     string
	CustomerEmail string
	Reason        string
	Amount        int32 // optional; must equal the purchase amount when set
}

// RefundRegistry creates refund requests and is the only writer of request
// and access refund statuses.
type RefundRegistry interface {
	CreateRequest(ctx context.Context, in CreateRefundInput) (*model.RefundRequest, error)
	Decide(ctx context.Context, requestID, decision, denialReason, decidedBy string) (*model.RefundRequest, error)
	MarkProcessed(ctx context.Context, requestID string) (*model.RefundRequest, error)
	Get(ctx context.Context, requestID string) (*model.RefundRequest, error)
	List(ctx context.Context, filter repository.RefundFilter) ([]*model.RefundRequest, error)
}

type refundRegistryImpl struct {
	db         *gorm.DB
	purchases  PurchaseService
	orderRepo  repository.OrderRepository
	accessRepo repository.AccessRepository
	refundRepo repository.RefundRepository
	refunders  map[model.Processor]client.Refunder
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewRefundRegistry(
	db *gorm.DB,
	purchases PurchaseService,
	orderRepo repository.OrderRepository,
	accessRepo repository.AccessRepository,
	refundRepo repository.RefundRepository,
	refunders map[model.Processor]client.Refunder,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
	now func() time.Time,
) RefundRegistry {
	if now == nil {
		now = utcNow
	}
	return &refundRegistryImpl{
		db:         db,
		purchases:  purchases,
		orderRepo:  orderRepo,
		accessRepo: accessRepo,
		refundRepo: refundRepo,
		refunders:  refunders,
		recorder:   recorder,
		metrics:    m,
		logger:     logger.With("module", "refunds"),
		now:        now,
	}
}

func (s *refundRegistryImpl) CreateRequest(ctx context.Context, in CreateRefundInput) (*model.RefundRequest, error) {
	err := required(
		field{"orderId", in.OrderID},
		field{"productId", in.ProductID},
		field{"customerEmail", in.CustomerEmail},
		field{"reason", in.Reason},
	)
	if err != nil {
		return nil, err
	}
	if in.Amount < 0 {
		return nil, common.Validation("amount must not be negative")
	}

	purchase, err := s.purchases.GetCompletedPurchase(ctx, in.OrderID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(in.CustomerEmail), purchase.CustomerEmail) {
		return nil, common.NotFound("%s", purchaseNotFound(in.OrderID, in.ProductID))
	}
	if in.Amount != 0 && in.Amount != purchase.Amount {
		return nil, common.Validation("amount %s does not match the purchase amount %s",
			client.MajorUnits(in.Amount), client.MajorUnits(purchase.Amount))
	}

	now := s.now()
	req := &model.RefundRequest{
		ID:            uuid.NewString(),
		OrderID:       purchase.OrderID,
		ProductID:     purchase.ProductID,
		CustomerEmail: purchase.CustomerEmail,
		Reason:        strings.TrimSpace(in.Reason),
		Status:        model.RequestStatusPending,
		RefundAmount:  purchase.Amount,
		Currency:      purchase.Currency,
		RequestedAt:   now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		access, _, err := s.purchases.EnsureAccess(ctx, tx, in.OrderID, in.ProductID)
		if err != nil {
			return err
		}
		if verdict := Evaluate(access, now); !verdict.Eligible {
			return common.Ineligible(verdict.Reason)
		}

		flipped, err := s.accessRepo.MarkRefundRequested(ctx, tx, in.OrderID, in.ProductID, now)
		if err != nil {
			return storeErr("mark refund requested", err, "")
		}
		if !flipped {
			// lost a race with an access or another request
			return s.ineligibleNow(ctx, tx, in.OrderID, in.ProductID, now)
		}

		if err := s.refundRepo.Create(ctx, tx, req); err != nil {
			return storeErr("create refund request", err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RefundTransitioned(string(model.RequestStatusPending))
	s.logger.InfoContext(ctx, "refund requested",
		"operation", "create_request",
		"outcome", "pending",
		"request_id", req.ID,
		"order_id", req.OrderID,
		"product_id", req.ProductID,
	)
	s.recorder.Record(ctx, audit.Event{
		Kind:       audit.KindRefundRequested,
		OrderID:    req.OrderID,
		ProductID:  req.ProductID,
		Actor:      req.CustomerEmail,
		OccurredAt: now,
		Metadata: map[string]any{
			"requestId": req.ID,
			"reason":    req.Reason,
			"amount":    client.MajorUnits(req.RefundAmount),
			"currency":  req.Currency,
		},
	})

	return req, nil
}

func (s *refundRegistryImpl) ineligibleNow(ctx context.Context, tx *gorm.DB, orderID, productID string, now time.Time) error {
	access, err := s.accessRepo.Get(ctx, tx, orderID, productID)
	if err != nil {
		return storeErr("get product access", err, purchaseNotFound(orderID, productID))
	}
	verdict := Evaluate(access, now)
	if verdict.Eligible {
		return common.InvalidState("refund status of %s in order %s changed concurrently", productID, orderID)
	}
	return common.Ineligible(verdict.Reason)
}

func (s *refundRegistryImpl) Decide(ctx context.Context, requestID, decision, denialReason, decidedBy string) (*model.RefundRequest, error) {
	if err := required(field{"requestId", requestID}, field{"decision", decision}); err != nil {
		return nil, err
	}

	next, ok := model.ParseRequestStatus(strings.ToLower(strings.TrimSpace(decision)))
	if !ok || (next != model.RequestStatusApproved && next != model.RequestStatusDenied) {
		return nil, common.Validation("decision must be %q or %q", model.RequestStatusApproved, model.RequestStatusDenied)
	}
	denialReason = strings.TrimSpace(denialReason)
	if next == model.RequestStatusDenied && denialReason == "" {
		return nil, common.Validation("denialReason is required when denying a refund")
	}
	if next == model.RequestStatusApproved {
		denialReason = ""
	}

	now := s.now()
	fields := map[string]interface{}{
		"decided_by": decidedBy,
		"decided_at": now,
		"updated_at": now,
	}
	if denialReason != "" {
		fields["denial_reason"] = denialReason
	}

	req, err := s.transition(ctx, requestID, model.RequestStatusPending, next, fields, now)
	if err != nil {
		return nil, err
	}

	kind := audit.KindRefundApproved
	if next == model.RequestStatusDenied {
		kind = audit.KindRefundDenied
	}
	s.logger.InfoContext(ctx, "refund decided",
		"operation", "decide",
		"outcome", next,
		"request_id", req.ID,
		"decided_by", decidedBy,
	)
	s.recorder.Record(ctx, audit.Event{
		Kind:       kind,
		OrderID:    req.OrderID,
		ProductID:  req.ProductID,
		Actor:      decidedBy,
		OccurredAt: now,
		Metadata: map[string]any{
			"requestId":    req.ID,
			"denialReason": denialReason,
		},
	})

	return req, nil
}

func (s *refundRegistryImpl) MarkProcessed(ctx context.Context, requestID string) (*model.RefundRequest, error) {
	if err := required(field{"requestId", requestID}); err != nil {
		return nil, err
	}

	req, err := s.refundRepo.Get(ctx, nil, requestID)
	if err != nil {
		return nil, storeErr("get refund request", err, requestNotFound(requestID))
	}
	if !req.Status.CanTransitionTo(model.RequestStatusProcessed) {
		return nil, common.InvalidState("refund request %s is %s, only approved requests can be processed", req.ID, req.Status)
	}

	refundID, err := s.payOut(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields := map[string]interface{}{
		"processed_at": now,
		"updated_at":   now,
	}
	if refundID != "" {
		fields["processor_refund_id"] = refundID
	}

	req, err = s.transition(ctx, requestID, model.RequestStatusApproved, model.RequestStatusProcessed, fields, now)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "refund processed",
		"operation", "mark_processed",
		"outcome", "processed",
		"request_id", req.ID,
		"processor_refund_id", refundID,
	)
	s.recorder.Record(ctx, audit.Event{
		Kind:       audit.KindRefundProcessed,
		OrderID:    req.OrderID,
		ProductID:  req.ProductID,
		OccurredAt: now,
		Metadata: map[string]any{
			"requestId":         req.ID,
			"processorRefundId": refundID,
			"amount":            client.MajorUnits(req.RefundAmount),
			"currency":          req.Currency,
		},
	})

	return req, nil
}

// payOut issues the refund at the processor that captured the order. Orders
// without a configured processor or capture reference are settled outside
// the service and return an empty refund id.
func (s *refundRegistryImpl) payOut(ctx context.Context, req *model.RefundRequest) (string, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, nil, req.OrderID)
	if err != nil {
		return "", storeErr("find order", err, fmt.Sprintf("order %s not found", req.OrderID))
	}

	refunder, ok := s.refunders[order.Processor]
	if !ok || refunder == nil || order.ProcessorRef == "" {
		return "", nil
	}

	refundID, err := refunder.Refund(ctx, client.RefundInstruction{
		ProcessorRef:   order.ProcessorRef,
		Amount:         req.RefundAmount,
		Currency:       req.Currency,
		IdempotencyKey: req.ID,
	})
	if err != nil {
		s.metrics.ProcessorRefund(string(order.Processor), "error")
		s.logger.ErrorContext(ctx, "processor refund failed",
			"operation", "mark_processed",
			"outcome", "processor_error",
			"request_id", req.ID,
			"processor", order.Processor,
			"error", err,
		)
		return "", common.Processor(fmt.Sprintf("refund via %s", order.Processor), err)
	}

	s.metrics.ProcessorRefund(string(order.Processor), "ok")
	return refundID, nil
}

// transition moves a request and its access record together. A request
// that is not in from yields InvalidState, or NotFound if it does not exist.
func (s *refundRegistryImpl) transition(
	ctx context.Context,
	requestID string,
	from, to model.RequestStatus,
	fields map[string]interface{},
	now time.Time,
) (*model.RefundRequest, error) {
	var req *model.RefundRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.refundRepo.Transition(ctx, tx, requestID, from, to, fields)
		if err != nil {
			return storeErr("update refund request", err, "")
		}

		req, err = s.refundRepo.Get(ctx, tx, requestID)
		if err != nil {
			return storeErr("get refund request", err, requestNotFound(requestID))
		}
		if !moved {
			return common.InvalidState("refund request %s is %s, cannot move to %s", req.ID, req.Status, to)
		}

		mirrored, err := s.accessRepo.SetRefundStatus(ctx, tx, req.OrderID, req.ProductID, from.RefundStatus(), to.RefundStatus(), now)
		if err != nil {
			return storeErr("update access refund status", err, "")
		}
		if !mirrored {
			return common.InvalidState("access refund status for %s in order %s is not %s", req.ProductID, req.OrderID, from.RefundStatus())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RefundTransitioned(string(to))
	return req, nil
}

func (s *refundRegistryImpl) Get(ctx context.Context, requestID string) (*model.RefundRequest, error) {
	if err := required(field{"requestId", requestID}); err != nil {
		return nil, err
	}

	req, err := s.refundRepo.Get(ctx, nil, requestID)
	if err != nil {
		return nil, storeErr("get refund request", err, requestNotFound(requestID))
	}
	return req, nil
}

func (s *refundRegistryImpl) List(ctx context.Context, filter repository.RefundFilter) ([]*model.RefundRequest, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	reqs, err := s.refundRepo.List(ctx, filter)
	if err != nil {
		return nil, storeErr("list refund requests", err, "")
	}
	return reqs, nil
}

func requestNotFound(id string) string {
	return fmt.Sprintf("refund request %s not found", id)
}
