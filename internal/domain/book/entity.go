package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. Stock只允许通过StockLedger修改,目录维护(上架/改价)不碰库存
type Book struct {
	ID          uint
	ISBN        string // ISBN号(国际标准书号)
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Price       int64  // 价格(单位:分,1元=100分)
	Stock       int    // 可售库存
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(isbn, title, author, publisher string, price int64, stock int, description string) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		Stock:       stock,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanSupply 当前库存是否足够满足quantity
func (b *Book) CanSupply(quantity int) bool {
	return quantity <= b.Stock
}

// ApplyDelta 在内存快照上应用库存变化
// 业务规则:调整后库存不能为负数
func (b *Book) ApplyDelta(delta int) error {
	if b.Stock+delta < 0 {
		return ErrInsufficientStock.WithID(Entity, b.ID)
	}
	b.Stock += delta
	b.UpdatedAt = time.Now()
	return nil
}
