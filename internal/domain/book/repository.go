package book

import (
	"context"
	"sort"
)

// Repository 图书目录仓储接口
// 只负责目录数据(上架、查询),库存变动见StockLedger
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// StockLedger 库存账本,系统中唯一允许修改图书库存的组件
//
// 两个方法都必须在事务上下文中调用(见mysql.TxManager),
// Lock获得的行锁一直持有到事务结束。
type StockLedger interface {
	// Lock 按图书ID升序加行锁并返回锁内读到的最新快照
	// 不存在的ID不会出现在返回的map中,由调用方决定报什么错
	Lock(ctx context.Context, ids []uint) (map[uint]*Book, error)

	// Adjust 原子调整库存
	// delta<0为预占(不足时返回ErrInsufficientStock),delta>0为归还
	Adjust(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(搜索标题、作者、出版社)
	SortBy   string // 排序字段(price_asc, price_desc, created_at_desc)
}

// SortedIDs 去重并升序排列图书ID
// 多本书加锁时统一按此顺序,避免两个订单交叉加锁形成死锁
func SortedIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
