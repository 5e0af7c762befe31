package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
)

// stockLedger 库存账本(MySQL)
// 必须在TxManager.Transaction内使用:
// Lock加的行锁(SELECT ... FOR UPDATE)一直持有到事务提交或回滚
type stockLedger struct {
	db *gorm.DB
}

// NewStockLedger 创建库存账本
func NewStockLedger(db *gorm.DB) book.StockLedger {
	return &stockLedger{db: db}
}

// Lock 按ID升序逐行加锁
// 所有事务都按同一顺序加锁,两个订单交叉引用同一批图书时不会互相等待成环
func (l *stockLedger) Lock(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	db := dbFrom(ctx, l.db)
	books := make(map[uint]*book.Book, len(ids))

	for _, id := range book.SortedIDs(ids) {
		var model BookModel
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, translateError(err)
		}
		books[id] = toBookEntity(&model)
	}
	return books, nil
}

// Adjust 原子调整库存
// UPDATE books SET stock = stock + ? WHERE id = ? AND stock + ? >= 0
// 没有更新到行时再查一次区分"图书不存在"和"库存不足"
func (l *stockLedger) Adjust(ctx context.Context, id uint, delta int) error {
	db := dbFrom(ctx, l.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return book.NotFound(id)
	}
	return book.ErrInsufficientStock.WithID(book.Entity, id)
}
