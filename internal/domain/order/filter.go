package order

import (
	"cmp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Filter 订单查询条件
// 每个字段都是可选的,nil表示不限制;多个条件之间是AND关系。
// 数据库实现把Filter翻译成gorm Scopes,内存实现直接调用Matches
type Filter struct {
	UserID         *uuid.UUID
	ClientID       *uuid.UUID
	ShopID         *uuid.UUID
	IncludeDeleted bool // 是否包含已软删除的订单
}

// ByUser 按下单用户过滤
func ByUser(id uuid.UUID) Filter { return Filter{UserID: &id} }

// ByClient 按客户过滤
func ByClient(id uuid.UUID) Filter { return Filter{ClientID: &id} }

// ByShop 按门店过滤
func ByShop(id uuid.UUID) Filter { return Filter{ShopID: &id} }

// WithDeleted 返回包含软删除订单的副本
func (f Filter) WithDeleted(include bool) Filter {
	f.IncludeDeleted = include
	return f
}

// Matches 判断订单是否满足条件
func (f Filter) Matches(o *Order) bool {
	if o.State == StatePurged {
		return false
	}
	if !f.IncludeDeleted && o.State != StateActive {
		return false
	}
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	if f.ClientID != nil && o.ClientID != *f.ClientID {
		return false
	}
	if f.ShopID != nil && o.ShopID != *f.ShopID {
		return false
	}
	return true
}

// 排序字段
const (
	SortByID        = "id"
	SortByCreatedAt = "createdAt"
	SortByTotal     = "total"
)

// 分页默认值
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page 分页参数,Page从0开始
type Page struct {
	Page    int
	Size    int
	OrderBy string
	Desc    bool
}

// Normalize 修正非法的分页参数
func (p Page) Normalize() Page {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	switch p.OrderBy {
	case SortByID, SortByCreatedAt, SortByTotal:
	default:
		p.OrderBy = SortByCreatedAt
	}
	return p
}

// Offset 跳过的记录数
func (p Page) Offset() int {
	return p.Page * p.Size
}

// ParseDirection 解析 ASC/DESC,其余值按升序处理
func ParseDirection(s string) bool {
	return strings.EqualFold(s, "DESC")
}

// PageResult 分页结果
type PageResult struct {
	Items []*Order
	Total int64
	Page  int
	Size  int
}

// TotalPages 总页数
func (r PageResult) TotalPages() int {
	if r.Size <= 0 {
		return 0
	}
	return int((r.Total + int64(r.Size) - 1) / int64(r.Size))
}

// SortOrders 按分页参数原地排序
// 排序字段相同时按ID升序,与数据库实现的翻页顺序一致
func SortOrders(orders []*Order, p Page) {
	compare := func(a, b *Order) int {
		switch p.OrderBy {
		case SortByTotal:
			return cmp.Compare(a.Total, b.Total)
		case SortByID:
			return 0
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		c := compare(a, b)
		if p.Desc {
			c = -c
		}
		if c == 0 {
			if p.OrderBy == SortByID && p.Desc {
				return a.ID.String() > b.ID.String()
			}
			return a.ID.String() < b.ID.String()
		}
		return c < 0
	})
}
