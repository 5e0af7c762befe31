package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeBookNotFound, "book not found")
	derived := sentinel.WithID("book", 42)

	assert.True(t, errors.Is(derived, sentinel), "派生错误应与哨兵错误相等")
	assert.False(t, errors.Is(derived, ErrInvalidParams))
	assert.Equal(t, "book", derived.Entity)
	assert.Equal(t, "42", derived.ID)
	assert.Empty(t, sentinel.ID, "WithID不能修改哨兵错误")

	wrapped := fmt.Errorf("创建订单: %w", derived)
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		code int
		want Kind
	}{
		{ErrCodeOrderNotFound, KindNotFound},
		{ErrCodeShopNotFound, KindNotFound},
		{ErrCodeInsufficientStock, KindConflict},
		{ErrCodeConcurrentModification, KindConflict},
		{ErrCodePriceMismatch, KindBadRequest},
		{ErrCodeOrderHasNoItems, KindBadRequest},
		{ErrCodeUnavailable, KindTransient},
		{ErrCodeDatabaseError, KindInternal},
		{ErrCodeTokenExpired, KindUnauthorized},
		{ErrCodeForbidden, KindForbidden},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, New(c.code, "x").Kind, "code=%d", c.code)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Transient(errors.New("dial tcp"), "db down").Retryable())
	assert.True(t, New(ErrCodeConcurrentModification, "deadlock").Retryable())
	assert.False(t, New(ErrCodeInsufficientStock, "stock").Retryable())
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.EqualError(t, appErr.Unwrap(), "boom")
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound(ErrCodeClientNotFound, "client", "abc")
	assert.Equal(t, "[40404] client not found (client=abc)", err.Error())
}
