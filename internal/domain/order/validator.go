package order

import (
	"context"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
)

// Validator 订单校验器
//
// 校验顺序固定,不能调换:
// 1. 用户 → 客户 → 门店 是否存在(引用错误优先于明细错误)
// 2. 合并明细,替换order.Lines
// 3. 合并后为空 → ErrOrderHasNoItems
// 4. 逐行:图书存在 → 数量合法 → 库存足够 → 单价一致
//
// 图书通过StockLedger.Lock读取,库存是加锁后读到的值。
// 校验只会改写order.Lines,不会修改库存。
type Validator struct {
	users   directory.Store
	clients directory.Store
	shops   directory.Store
	ledger  book.StockLedger
}

// NewValidator 创建订单校验器
func NewValidator(users, clients, shops directory.Store, ledger book.StockLedger) *Validator {
	return &Validator{
		users:   users,
		clients: clients,
		shops:   shops,
		ledger:  ledger,
	}
}

// Validate 校验订单,必须在事务内调用
func (v *Validator) Validate(ctx context.Context, o *Order) error {
	if err := v.ValidateReferences(ctx, o); err != nil {
		return err
	}

	o.Lines = MergeLines(o.Lines)
	if len(o.Lines) == 0 {
		return ErrOrderHasNoItems
	}
	books, err := v.ledger.Lock(ctx, o.BookIDs())
	if err != nil {
		return err
	}

	for _, l := range o.Lines {
		b, ok := books[l.BookID]
		if !ok {
			return book.NotFound(l.BookID)
		}
		if l.Quantity < 1 {
			return ErrInvalidQuantity.WithID(book.Entity, l.BookID)
		}
		if !b.CanSupply(l.Quantity) {
			return book.ErrInsufficientStock.WithID(book.Entity, l.BookID)
		}
		if l.Price != b.Price {
			return ErrPriceMismatch.WithID(book.Entity, l.BookID)
		}
	}

	o.Recalculate()
	return nil
}

// ValidateReferences 只校验用户、客户、门店是否存在
func (v *Validator) ValidateReferences(ctx context.Context, o *Order) error {
	if err := directory.Require(ctx, v.users, o.UserID); err != nil {
		return err
	}
	if err := directory.Require(ctx, v.clients, o.ClientID); err != nil {
		return err
	}
	return directory.Require(ctx, v.shops, o.ShopID)
}
