package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/pkg/metrics"
	"github.com/xiebiao/bookstore-backoffice/pkg/saga"
)

// TxManager 内存事务管理器
// 1. 全局互斥锁串行化所有事务,等价于把涉及的每一行都锁住
// 2. fn返回error时执行补偿日志,撤销已生效的修改
// 3. 嵌套调用复用外层事务
type TxManager struct {
	mu      sync.Mutex
	timeout time.Duration
	log     *zap.Logger
}

// NewTxManager 创建内存事务管理器
func NewTxManager(timeout time.Duration, log *zap.Logger) *TxManager {
	return &TxManager{timeout: timeout, log: log}
}

// Transaction 执行事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := saga.FromContext(ctx); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	log := saga.NewLog()
	err := fn(saga.WithLog(ctx, log))
	if err == nil {
		log.Discard()
		return nil
	}

	n, cerr := log.Compensate(context.Background())
	metrics.AddCounter(metrics.CompensationsTotal, float64(n))
	if cerr != nil {
		m.log.Error("内存事务补偿失败", zap.Error(cerr), zap.NamedError("cause", err))
	}
	return err
}
