package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
)

type orderRow = order.Order

// OrderRepository 内存订单仓储,读写都做深拷贝
type OrderRepository struct {
	s *Store
}

// NewOrderRepository 创建内存订单仓储
func NewOrderRepository(s *Store) order.Repository {
	return &OrderRepository{s: s}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[o.ID]; ok {
		return order.ErrConcurrentModification.WithID(order.Entity, o.ID)
	}
	r.s.orders[o.ID] = o.Clone()

	id := o.ID
	record(ctx, "create order", func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.orders, id)
	})
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.orders[id]
	if !ok {
		return nil, order.NotFound(id)
	}
	return row.Clone(), nil
}

// LockByID 全局事务锁已经保证互斥,直接读取
func (r *OrderRepository) LockByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.orders[o.ID]
	if !ok {
		return order.NotFound(o.ID)
	}
	r.s.orders[o.ID] = o.Clone()

	record(ctx, "update order", func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.orders[prev.ID] = prev
	})
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.orders[id]
	if !ok {
		return order.NotFound(id)
	}
	delete(r.s.orders, id)

	record(ctx, "delete order", func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		r.s.orders[prev.ID] = prev
	})
	return nil
}

func (r *OrderRepository) List(_ context.Context, filter order.Filter, page order.Page) ([]*order.Order, int64, error) {
	page = page.Normalize()

	r.s.mu.RLock()
	matched := make([]*order.Order, 0, len(r.s.orders))
	for _, row := range r.s.orders {
		if filter.Matches(row) {
			matched = append(matched, row.Clone())
		}
	}
	r.s.mu.RUnlock()

	// 先按ID排一次,排序字段相同时结果稳定
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.String() < matched[j].ID.String()
	})
	order.SortOrders(matched, page)

	return paginate(matched, page.Offset(), page.Size), int64(len(matched)), nil
}

func (r *OrderRepository) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.orders {
		if row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
