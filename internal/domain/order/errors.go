package order

import (
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// Entity 错误上下文中的实体名
const Entity = "order"

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "order not found")

	// ErrOrderHasNoItems 合并后没有任何明细
	ErrOrderHasNoItems = apperrors.New(apperrors.ErrCodeOrderHasNoItems, "order has no items")

	// ErrPriceMismatch 明细单价与目录价不一致
	ErrPriceMismatch = apperrors.New(apperrors.ErrCodePriceMismatch, "price does not match catalog price")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be at least 1")

	// ErrInvalidStateTransition 当前状态不允许此操作(如修改已软删除的订单)
	ErrInvalidStateTransition = apperrors.New(apperrors.ErrCodeInvalidOrderState, "operation not allowed in current order state")

	// ErrConcurrentModification 并发修改冲突(死锁、锁等待超时),可重试
	ErrConcurrentModification = apperrors.New(apperrors.ErrCodeConcurrentModification, "concurrent modification, please retry")
)

// NotFound 带订单ID的不存在错误
func NotFound(id uuid.UUID) error {
	return ErrOrderNotFound.WithID(Entity, id)
}
