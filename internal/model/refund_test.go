package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusDenied, true},
		{RequestStatusPending, RequestStatusProcessed, false},
		{RequestStatusApproved, RequestStatusProcessed, true},
		{RequestStatusApproved, RequestStatusPending, false},
		{RequestStatusApproved, RequestStatusDenied, false},
		{RequestStatusDenied, RequestStatusPending, false},
		{RequestStatusDenied, RequestStatusProcessed, false},
		{RequestStatusProcessed, RequestStatusPending, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestStatus_Terminal(t *testing.T) {
	assert.False(t, RequestStatusPending.Terminal())
	assert.False(t, RequestStatusApproved.Terminal())
	assert.True(t, RequestStatusDenied.Terminal())
	assert.True(t, RequestStatusProcessed.Terminal())
}

func TestRequestStatus_NeverMirrorsNone(t *testing.T) {
	for _, s := range []RequestStatus{RequestStatusPending, RequestStatusApproved, RequestStatusDenied, RequestStatusProcessed} {
		assert.NotEqual(t, RefundStatusNone, s.RefundStatus(), s)
	}
}

func TestParseAccessType(t *testing.T) {
	for _, s := range []string{"download", "access", "preview"} {
		got, ok := ParseAccessType(s)
		assert.True(t, ok, s)
		assert.Equal(t, AccessType(s), got)
	}

	_, ok := ParseAccessType("stream")
	assert.False(t, ok)
	_, ok = ParseAccessType("")
	assert.False(t, ok)
}

func TestOrderItem_AmountDoesNotWrap(t *testing.T) {
	item := OrderItem{UnitPrice: 1999, Quantity: 2_000_000}
	assert.Equal(t, int64(3_998_000_000), item.Amount())
}
