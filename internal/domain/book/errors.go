package book

import (
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// Entity 错误上下文中的实体名
const Entity = "book"

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "isbn already exists")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "price must be between 1 and 999999")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "stock must not be negative")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "insufficient stock")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "invalid isbn")
)

// NotFound 带图书ID的不存在错误
func NotFound(id uint) error {
	return ErrBookNotFound.WithID(Entity, id)
}
