package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository 订单仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现;事务通过context传递
type Repository interface {
	// Create 创建订单(包含明细)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含已软删除的订单)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// LockByID 加行锁后查找订单,必须在事务内调用
	LockByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Update 覆盖订单主记录和全部明细
	Update(ctx context.Context, order *Order) error

	// Delete 删除订单及明细
	Delete(ctx context.Context, id uuid.UUID) error

	// List 按条件分页查询
	List(ctx context.Context, filter Filter, page Page) ([]*Order, int64, error)

	// ExistsByUserID 用户是否下过订单(含软删除)
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
}
