package client

import (
	"context"

	"github.com/shopspring/decimal"
)

// RefundInstruction asks a payment processor to return money for a capture.
type RefundInstruction struct {
	ProcessorRef   string // paypal capture id or braintree transaction id
	Amount         int32  // minor units
	Currency       string
	IdempotencyKey string
}

// Refunder issues refunds at a payment processor and returns the
// processor's refund id.
type Refunder interface {
	Refund(ctx context.Context, in RefundInstruction) (string, error)
}

// MajorUnits renders minor units as a two-decimal amount, 999 -> "9.99".
func MajorUnits(amount int32) string {
	return decimal.New(int64(amount), -2).StringFixed(2)
}
