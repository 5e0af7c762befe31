package directory

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// Kind 目录实体类型
// 用户、客户、门店的增删改不在本系统,这里只关心"是否存在"
type Kind string

const (
	KindUser   Kind = "user"
	KindClient Kind = "client"
	KindShop   Kind = "shop"
)

// Store 目录查询接口
// 每种实体各有一个实现,由订单校验器按 用户→客户→门店 的顺序调用
type Store interface {
	// Kind 返回该Store负责的实体类型
	Kind() Kind

	// Exists 判断实体是否存在
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "user not found")

	// ErrClientNotFound 客户不存在
	ErrClientNotFound = apperrors.New(apperrors.ErrCodeClientNotFound, "client not found")

	// ErrShopNotFound 门店不存在
	ErrShopNotFound = apperrors.New(apperrors.ErrCodeShopNotFound, "shop not found")
)

// NotFound 返回指定类型实体的不存在错误,携带实体类型和ID
func NotFound(kind Kind, id uuid.UUID) error {
	switch kind {
	case KindUser:
		return ErrUserNotFound.WithID(string(kind), id)
	case KindClient:
		return ErrClientNotFound.WithID(string(kind), id)
	case KindShop:
		return ErrShopNotFound.WithID(string(kind), id)
	default:
		return apperrors.NotFound(apperrors.ErrCodeNotFound, string(kind), id)
	}
}

// Require 要求实体存在,不存在时返回对应的NotFound错误
func Require(ctx context.Context, store Store, id uuid.UUID) error {
	ok, err := store.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFound(store.Kind(), id)
	}
	return nil
}
