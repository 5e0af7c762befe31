package order

import (
	"context"
	"sort"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
)

// Reservation 库存预占协调器
// Reserve和Release互为逆操作,只通过StockLedger修改库存;
// 两者都按图书ID升序处理明细,和Lock的加锁顺序一致
type Reservation struct {
	ledger book.StockLedger
}

// NewReservation 创建库存预占协调器
func NewReservation(ledger book.StockLedger) *Reservation {
	return &Reservation{ledger: ledger}
}

// Reserve 为已校验的订单扣减库存,并重新计算订单金额
// 任一行失败直接返回错误,已扣减的行由外层事务回滚
func (r *Reservation) Reserve(ctx context.Context, o *Order) error {
	for _, l := range sortedLines(o.Lines) {
		if err := r.ledger.Adjust(ctx, l.BookID, -l.Quantity); err != nil {
			return err
		}
	}
	o.Recalculate()
	return nil
}

// Release 归还订单占用的库存
// 调用方必须传入修改前的订单
func (r *Reservation) Release(ctx context.Context, o *Order) error {
	for _, l := range sortedLines(o.Lines) {
		if err := r.ledger.Adjust(ctx, l.BookID, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func sortedLines(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BookID < out[j].BookID })
	return out
}
