// Package memory 进程内存储
//
// 用于本地开发(server.store=memory)和应用层测试。所有写事务由TxManager串行执行,
// 每一步修改都在补偿日志里记录逆操作,事务失败时逆序撤销。
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-backoffice/pkg/saga"
)

// Store 所有内存仓储共享的数据
type Store struct {
	mu      sync.RWMutex
	books   map[uint]*bookRow
	isbn    map[string]uint
	nextID  uint
	orders  map[uuid.UUID]*orderRow
	members map[memberKey]struct{}
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{
		books:   make(map[uint]*bookRow),
		isbn:    make(map[string]uint),
		orders:  make(map[uuid.UUID]*orderRow),
		members: make(map[memberKey]struct{}),
	}
}

// record 在事务内记录逆操作,事务外直接忽略
func record(ctx context.Context, name string, undo func()) {
	if log, ok := saga.FromContext(ctx); ok {
		log.Record(name, func(context.Context) error {
			undo()
			return nil
		})
	}
}
