package dto

import (
	"time"

	"github.com/google/uuid"

	apporder "github.com/xiebiao/bookstore-backoffice/internal/application/order"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// OrderRequest HTTP下单/改单请求
// userId为空时使用当前登录用户;明细的数量、单价由订单校验器检查
type OrderRequest struct {
	UserID   string             `json:"userId" binding:"omitempty,uuid" example:"3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"`
	ClientID string             `json:"clientId" binding:"required,uuid" example:"7b8c9d0e-1f2a-4b3c-9d4e-5f6a7b8c9d0e"`
	ShopID   string             `json:"shopId" binding:"required,uuid" example:"c1d2e3f4-a5b6-4c7d-8e9f-a0b1c2d3e4f5"`
	Lines    []OrderLineRequest `json:"orderLines" binding:"dive"`
}

// OrderLineRequest 明细
type OrderLineRequest struct {
	BookID   uint  `json:"bookId" binding:"required" example:"1"`
	Quantity int   `json:"quantity" example:"2"`
	Price    int64 `json:"price" example:"5900"` // 单价(分),必须与目录价一致
}

// ToRequest 转换成应用层请求
func (r *OrderRequest) ToRequest(currentUser uuid.UUID) (apporder.Request, error) {
	userID := currentUser
	if r.UserID != "" {
		id, err := uuid.Parse(r.UserID)
		if err != nil {
			return apporder.Request{}, errors.ErrInvalidParams.WithErr(err)
		}
		userID = id
	}
	clientID, err := uuid.Parse(r.ClientID)
	if err != nil {
		return apporder.Request{}, errors.ErrInvalidParams.WithErr(err)
	}
	shopID, err := uuid.Parse(r.ShopID)
	if err != nil {
		return apporder.Request{}, errors.ErrInvalidParams.WithErr(err)
	}

	lines := make([]apporder.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = apporder.LineRequest{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price}
	}
	return apporder.Request{UserID: userID, ClientID: clientID, ShopID: shopID, Lines: lines}, nil
}

// OrderResponse HTTP订单响应
type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"userId"`
	ClientID   uuid.UUID           `json:"clientId"`
	ShopID     uuid.UUID           `json:"shopId"`
	Lines      []OrderLineResponse `json:"orderLines"`
	Total      int64               `json:"total" example:"11800"`
	TotalYuan  string              `json:"totalYuan" example:"118.00"`
	TotalBooks int                 `json:"totalBooks" example:"2"`
	State      string              `json:"state" example:"active"`
	IsDeleted  bool                `json:"isDeleted"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// OrderLineResponse 明细响应
type OrderLineResponse struct {
	BookID   uint  `json:"bookId"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
	Total    int64 `json:"total"`
}

// NewOrderResponse 领域实体 → HTTP响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: l.Total}
	}
	return &OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		ClientID:   o.ClientID,
		ShopID:     o.ShopID,
		Lines:      lines,
		Total:      o.Total,
		TotalYuan:  FormatPriceYuan(o.Total),
		TotalBooks: o.TotalBooks,
		State:      o.State.String(),
		IsDeleted:  o.IsDeleted(),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// NewOrderResponses 批量转换
func NewOrderResponses(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = NewOrderResponse(o)
	}
	return out
}

// PageQuery 订单分页查询参数,page从0开始
type PageQuery struct {
	Page           int    `form:"page" binding:"omitempty,min=0" example:"0"`
	Size           int    `form:"size" binding:"omitempty,min=1,max=100" example:"10"`
	OrderBy        string `form:"orderBy" binding:"omitempty,oneof=id createdAt total" example:"createdAt"`
	Order          string `form:"order" binding:"omitempty,oneof=ASC DESC asc desc" example:"DESC"`
	IncludeDeleted bool   `form:"includeDeleted"`
}

// ToPage 转换成领域分页参数
func (q PageQuery) ToPage() order.Page {
	return order.Page{
		Page:    q.Page,
		Size:    q.Size,
		OrderBy: q.OrderBy,
		Desc:    order.ParseDirection(q.Order),
	}.Normalize()
}
