package client

import (
	"context"
	"digital-storefront/internal/config"
	"errors"
	"fmt"

	"github.com/braintree-go/braintree-go"
)

// Braintree validation code for a refund of a transaction that has
// already been refunded in full.
const braintreeAlreadyRefunded = "91512"

type BraintreeClient interface {
	Refunder
}

// transactionGateway is the part of *braintree.TransactionGateway used here.
type transactionGateway interface {
	Refund(ctx context.Context, id string, amount ...*braintree.Decimal) (*braintree.Transaction, error)
	Find(ctx context.Context, id string) (*braintree.Transaction, error)
}

type braintreeClientImpl struct {
	transactions transactionGateway
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		transactions: gateway.Transaction(),
	}
}

// Refund refunds a settled sale transaction. When the transaction has
// already been refunded in full, the existing refund id is returned.
func (c *braintreeClientImpl) Refund(ctx context.Context, in RefundInstruction) (string, error) {
	// NewDecimal(unscaled, scale): 999 -> "9.99"
	btAmount := braintree.NewDecimal(int64(in.Amount), 2)

	tx, err := c.transactions.Refund(ctx, in.ProcessorRef, btAmount)
	if err != nil {
		if !alreadyRefunded(err) {
			return "", fmt.Errorf("transaction refund failed: %w", err)
		}
		return c.existingRefund(ctx, in.ProcessorRef)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return "", fmt.Errorf("refund declined by processor: %s", tx.ProcessorResponseText)
	}

	return tx.Id, nil
}

func (c *braintreeClientImpl) existingRefund(ctx context.Context, transactionID string) (string, error) {
	tx, err := c.transactions.Find(ctx, transactionID)
	if err != nil {
		return "", fmt.Errorf("find refunded transaction: %w", err)
	}
	if tx.RefundIds == nil || len(*tx.RefundIds) == 0 {
		return "", fmt.Errorf("transaction %s reported as refunded but has no refunds", transactionID)
	}

	ids := *tx.RefundIds
	return ids[len(ids)-1], nil
}

func alreadyRefunded(err error) bool {
	var btErr *braintree.BraintreeError
	if !errors.As(err, &btErr) {
		return false
	}
	for _, ve := range btErr.All() {
		if ve.Code == braintreeAlreadyRefunded {
			return true
		}
	}
	return false
}
