package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache 订单详情缓存
// 写操作提交后由Service用Put覆盖;读库回填只用Add,不会覆盖写操作放进去的新值。
// 删除后缓存的是State为StatePurged的墓碑,读到墓碑按订单不存在处理。
type Cache interface {
	// Get 未命中时返回(nil, nil)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Put(ctx context.Context, order *Order) error
	// Add key已存在时不写入,返回false
	Add(ctx context.Context, order *Order) (bool, error)
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// EventType 变更事件类型
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent 订单变更事件
type ChangeEvent struct {
	Type       EventType
	Order      *Order
	OccurredAt time.Time
}

// NewChangeEvent 创建变更事件
func NewChangeEvent(t EventType, o *Order) ChangeEvent {
	return ChangeEvent{Type: t, Order: o, OccurredAt: time.Now()}
}

// Notifier 变更通知
// 调用方在事务提交后发送,发送失败只记录日志,不影响已提交的数据
type Notifier interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
