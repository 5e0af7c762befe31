package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 1. 事务DB通过context传递,Repository用dbFrom取出
// 2. fn返回error时ROLLBACK,返回nil时COMMIT
// 3. 嵌套调用复用外层事务
type TxManager struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewTxManager 创建事务管理器,timeout<=0表示不额外限制
func NewTxManager(db *gorm.DB, timeout time.Duration) *TxManager {
	return &TxManager{db: db, timeout: timeout}
}

// Transaction 执行事务
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    books, err := ledger.Lock(ctx, ids)      // SELECT ... FOR UPDATE
//	    ...
//	    return orderRepo.Create(ctx, o)         // nil则提交,非nil则回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return translateError(err)
}

// dbFrom 从context获取事务DB,没有事务时使用默认DB
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
