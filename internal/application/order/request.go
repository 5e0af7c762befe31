package order

import (
	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
)

// Request 下单/改单请求
type Request struct {
	UserID   uuid.UUID
	ClientID uuid.UUID
	ShopID   uuid.UUID
	Lines    []LineRequest
}

// LineRequest 明细请求,Price为客户端看到的目录价(分)
type LineRequest struct {
	BookID   uint
	Quantity int
	Price    int64
}

// toOrder 构造草稿订单,明细原样保留,合并和校验交给Validator
func (r Request) toOrder() *order.Order {
	lines := make([]order.Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, order.NewLine(l.BookID, l.Quantity, l.Price))
	}
	return order.NewOrder(r.UserID, r.ClientID, r.ShopID, lines)
}
