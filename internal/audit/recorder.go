// Package audit records access and refund events without holding up the
// operation that produced them.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindAccessRecorded    Kind = "access.recorded"
	KindRefundRequested   Kind = "refund.requested"
	KindRefundApproved    Kind = "refund.approved"
	KindRefundDenied      Kind = "refund.denied"
	KindRefundProcessed   Kind = "refund.processed"
	KindPurchaseCompleted Kind = "purchase.completed"
)

type Event struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	OrderID    string         `json:"orderId"`
	ProductID  string         `json:"productId,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// Recorder writes events to a sink on background goroutines. Sink errors
// are logged and dropped.
type Recorder struct {
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRecorder(sink Sink, timeout time.Duration, logger *slog.Logger) *Recorder {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Recorder{
		sink:    sink,
		timeout: timeout,
		logger:  logger.With("module", "audit"),
	}
}

// Record never blocks on the sink. The write outlives ctx cancellation but
// is bounded by the recorder timeout.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("audit event dropped after close", "kind", event.Kind, "order_id", event.OrderID)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	go func() {
		defer r.wg.Done()
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Warn("audit sink panicked",
					"kind", event.Kind,
					"event_id", event.ID,
					"order_id", event.OrderID,
					"panic", p,
				)
			}
		}()

		if err := r.sink.Write(writeCtx, event); err != nil {
			r.logger.Warn("audit write failed",
				"kind", event.Kind,
				"event_id", event.ID,
				"order_id", event.OrderID,
				"product_id", event.ProductID,
				"error", err,
			)
		}
	}()
}

// Close waits for in-flight writes and closes the sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()
	return r.sink.Close()
}
