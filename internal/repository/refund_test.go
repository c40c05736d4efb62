package repository

import (
	"context"
	"digital-storefront/internal/model"
	"digital-storefront/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRequest(id, orderID string, at time.Time) *model.RefundRequest {
	return &model.RefundRequest{
		ID:            id,
		OrderID:       orderID,
		ProductID:     "ebook",
		CustomerEmail: "Buyer@Example.com",
		Reason:        "Accidental purchase",
		Status:        model.RequestStatusPending,
		RefundAmount:  999,
		Currency:      "USD",
		RequestedAt:   at,
	}
}

func TestRefundRepository_TransitionIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewRefundRepository(testutil.OpenDB(t))
	require.NoError(t, repo.Create(ctx, nil, pendingRequest("req-1", "ORD-1", t0)))

	decidedAt := t0.Add(time.Hour)
	ok, err := repo.Transition(ctx, nil, "req-1", model.RequestStatusPending, model.RequestStatusDenied, map[string]interface{}{
		"denial_reason": "already used",
		"decided_at":    decidedAt,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Transition(ctx, nil, "req-1", model.RequestStatusPending, model.RequestStatusApproved, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	req, err := repo.Get(ctx, nil, "req-1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusDenied, req.Status)
	assert.Equal(t, "already used", req.DenialReason)
	require.NotNil(t, req.DecidedAt)
	assert.True(t, req.DecidedAt.Equal(decidedAt))
}

func TestRefundRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	repo := NewRefundRepository(db)

	require.NoError(t, repo.Create(ctx, nil, pendingRequest("req-1", "ORD-1", t0)))
	require.NoError(t, repo.Create(ctx, nil, pendingRequest("req-2", "ORD-2", t0.Add(time.Minute))))
	approved := pendingRequest("req-3", "ORD-3", t0.Add(2*time.Minute))
	approved.Status = model.RequestStatusApproved
	require.NoError(t, repo.Create(ctx, nil, approved))

	all, err := repo.List(ctx, RefundFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req-3", all[0].ID, "newest first")

	pending, err := repo.List(ctx, RefundFilter{Status: model.RequestStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	byOrder, err := repo.List(ctx, RefundFilter{OrderID: "ORD-2"})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, "req-2", byOrder[0].ID)

	byEmail, err := repo.List(ctx, RefundFilter{CustomerEmail: "buyer@example.com", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	assert.EqualValues(t, 1, testutil.CountRequests(t, db, "ORD-1", "ebook"))
}
