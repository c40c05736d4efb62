package repository

import (
	"context"
	"digital-storefront/internal/model"
	"digital-storefront/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOrderRepository_FindCompletedPurchase(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := NewOrderRepository(db)

	testutil.SeedPurchase(t, db, "ORD-1", "ebook", "buyer@example.com", 1999, t0)

	purchase, err := repo.FindCompletedPurchase(ctx, nil, "ORD-1", "ebook")
	require.NoError(t, err)
	assert.Equal(t, int32(1999), purchase.Amount)
	assert.Equal(t, "USD", purchase.Currency)
	assert.Equal(t, "buyer@example.com", purchase.CustomerEmail)
	assert.True(t, purchase.PurchasedAt.Equal(t0))

	_, err = repo.FindCompletedPurchase(ctx, nil, "ORD-1", "icons")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindCompletedPurchase(ctx, nil, "ORD-404", "ebook")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_PurchaseAmountOverflow(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := NewOrderRepository(db)

	require.NoError(t, repo.Create(ctx, nil, &model.Order{
		OrderID:       "ORD-BULK",
		Status:        model.OrderStatusCompleted,
		CustomerEmail: "buyer@example.com",
		Currency:      "USD",
		CreatedAt:     t0,
	}))
	require.NoError(t, repo.CreateOrderItems(ctx, nil, []*model.OrderItem{
		{OrderID: "ORD-BULK", ProductID: "ebook", Quantity: 2_000_000, UnitPrice: 1999, Currency: "USD"},
	}))

	_, err := repo.FindCompletedPurchase(ctx, nil, "ORD-BULK", "ebook")
	require.ErrorContains(t, err, "out of range")
}

func TestOrderRepository_PendingOrderIsNotAPurchase(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := NewOrderRepository(db)

	require.NoError(t, repo.Create(ctx, nil, &model.Order{
		OrderID:       "ORD-2",
		Status:        model.OrderStatusApproved,
		CustomerEmail: "buyer@example.com",
		Amount:        999,
		Currency:      "USD",
		CreatedAt:     t0,
	}))
	require.NoError(t, repo.CreateOrderItems(ctx, nil, []*model.OrderItem{
		{OrderID: "ORD-2", ProductID: "icons", Quantity: 1, UnitPrice: 999, Currency: "USD"},
	}))

	_, err := repo.FindCompletedPurchase(ctx, nil, "ORD-2", "icons")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	completedAt := t0.Add(time.Minute)
	ok, err := repo.MarkCompleted(ctx, nil, "ORD-2", completedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCompleted(ctx, nil, "ORD-2", completedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "already completed")

	purchase, err := repo.FindCompletedPurchase(ctx, nil, "ORD-2", "icons")
	require.NoError(t, err)
	assert.True(t, purchase.PurchasedAt.Equal(completedAt))
}
