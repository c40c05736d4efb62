package service

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/client"
	"digital-storefront/internal/common"
	"digital-storefront/internal/logging"
	"digital-storefront/internal/metrics"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"digital-storefront/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (s *captureSink) Write(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) kinds() []audit.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]audit.Kind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type harness struct {
	db       *gorm.DB
	clock    *testutil.Clock
	sink     *captureSink
	recorder *audit.Recorder
	refunder *testutil.FakeRefunder

	accessRepo repository.AccessRepository
	refundRepo repository.RefundRepository

	purchases PurchaseService
	evaluator EligibilityEvaluator
	tracker   AccessTracker
	refunds   RefundRegistry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithDB(t, testutil.OpenDB(t))
}

func newHarnessWithDB(t *testing.T, db *gorm.DB) *harness {
	t.Helper()

	h := &harness{
		db:       db,
		clock:    testutil.NewClock(t0),
		sink:     &captureSink{},
		refunder: &testutil.FakeRefunder{ID: "RF-123"},
	}
	logger := logging.Discard()
	m := metrics.New()

	h.recorder = audit.NewRecorder(h.sink, time.Second, logger)
	t.Cleanup(func() { _ = h.recorder.Close() })

	orderRepo := repository.NewOrderRepository(db)
	h.accessRepo = repository.NewAccessRepository(db)
	h.refundRepo = repository.NewRefundRepository(db)

	h.purchases = NewPurchaseService(db, orderRepo, h.accessRepo, h.recorder, logger, h.clock.Now)
	h.evaluator = NewEligibilityEvaluator(h.purchases, m, h.clock.Now)
	h.tracker = NewAccessTracker(h.purchases, h.accessRepo, h.recorder, m, logger, h.clock.Now)
	h.refunds = NewRefundRegistry(
		db,
		h.purchases,
		orderRepo,
		h.accessRepo,
		h.refundRepo,
		map[model.Processor]client.Refunder{model.ProcessorPaypal: h.refunder},
		h.recorder,
		m,
		logger,
		h.clock.Now,
	)

	return h
}

// purchase seeds a completed order for the ebook bought at t0.
func (h *harness) purchase(t *testing.T, orderID string) {
	t.Helper()
	testutil.SeedPurchase(t, h.db, orderID, "ebook", "buyer@example.com", 1999, t0)
}

// flushAudit waits for pending audit writes.
func (h *harness) flushAudit(t *testing.T) []audit.Kind {
	t.Helper()
	require.NoError(t, h.recorder.Close())
	return h.sink.kinds()
}

func (h *harness) createRequest(t *testing.T, orderID string) *model.RefundRequest {
	t.Helper()
	req, err := h.refunds.CreateRequest(context.Background(), CreateRefundInput{
		OrderID:       orderID,
		ProductID:     "ebook",
		CustomerEmail: "buyer@example.com",
		Reason:        "Bought by mistake",
	})
	require.NoError(t, err)
	return req
}

func assertKind(t *testing.T, err error, kind common.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equalf(t, kind, common.KindOf(err), "error: %v", err)
}
