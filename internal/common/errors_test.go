package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create refund request: %w", Ineligible("window expired"))

	assert.Equal(t, KindIneligible, KindOf(err))
	assert.True(t, IsKind(err, KindIneligible))
	assert.False(t, IsKind(err, KindValidation))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestStoreUnavailable_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreUnavailable("load product access", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store_unavailable: load product access: connection refused", err.Error())
}

func TestValidation_Message(t *testing.T) {
	err := Validation("%s is required", "orderId")
	assert.Equal(t, "validation: orderId is required", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, HTTPStatus(Validation("missing orderId")))
	assert.Equal(t, 404, HTTPStatus(NotFound("order %s", "ORD-1")))
	assert.Equal(t, 409, HTTPStatus(Ineligible("window expired")))
	assert.Equal(t, 409, HTTPStatus(InvalidState("denied")))
	assert.Equal(t, 500, HTTPStatus(StoreUnavailable("get", errors.New("down"))))
	assert.Equal(t, 502, HTTPStatus(Processor("refund via paypal", errors.New("declined"))))
	assert.Equal(t, 401, HTTPStatus(Unauthorized("missing bearer token")))
	assert.Equal(t, 500, HTTPStatus(errors.New("boom")))
}
