package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/pkg/metrics"
	"github.com/xiebiao/bookstore-backoffice/pkg/tracing"
)

const tracerName = "bookstore-backoffice/order"

// Transactor 事务边界
// mysql.TxManager(行锁 + 数据库事务)和memory.TxManager(全局锁 + 补偿日志)都实现了它
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 订单应用服务
//
// 每个写操作都是一个事务:
//
//	加锁读取 → 校验(库存在锁内重新读取) → 预占/归还库存 → 写订单 → COMMIT
//
// 提交之后才更新缓存、发送变更通知;这两步失败只记日志,不影响已提交的数据。
type Service struct {
	tx          Transactor
	repo        order.Repository
	ledger      book.StockLedger
	validator   *order.Validator
	reservation *order.Reservation
	cache       order.Cache
	notifier    order.Notifier
	log         *zap.Logger
	loads       singleflight.Group
}

// NewService 创建订单应用服务,cache为nil时不使用缓存
func NewService(
	tx Transactor,
	repo order.Repository,
	ledger book.StockLedger,
	validator *order.Validator,
	cache order.Cache,
	notifier order.Notifier,
	log *zap.Logger,
) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{
		tx:          tx,
		repo:        repo,
		ledger:      ledger,
		validator:   validator,
		reservation: order.NewReservation(ledger),
		cache:       cache,
		notifier:    notifier,
		log:         log,
	}
}

// CreateOrder 下单
func (s *Service) CreateOrder(ctx context.Context, req Request) (o *order.Order, err error) {
	ctx, done := s.observe(ctx, "create")
	defer func() { done(err) }()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		draft := req.toOrder()
		if err := s.validator.Validate(ctx, draft); err != nil {
			return err
		}
		if err := s.reservation.Reserve(ctx, draft); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, draft); err != nil {
			return err
		}
		o = draft
		return nil
	})
	if err != nil {
		s.log.Info("下单失败", zap.Stringer("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	countStock(metrics.DirectionReserve, o)
	s.log.Info("订单已创建",
		zap.Stringer("order_id", o.ID),
		zap.Int64("total", o.Total),
		zap.Int("total_books", o.TotalBooks),
	)
	s.putCache(ctx, o)
	s.notify(ctx, order.EventCreate, o)
	return o, nil
}

// UpdateOrder 修改订单
// 在同一个事务内:先按当前库存校验新明细,再归还旧明细并预占新明细,订单ID和创建时间保持不变
func (s *Service) UpdateOrder(ctx context.Context, id uuid.UUID, req Request) (o *order.Order, err error) {
	ctx, done := s.observe(ctx, "update", attribute.String("order.id", id.String()))
	defer func() { done(err) }()

	var previous *order.Order
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if !existing.CanTransitionTo(order.StateActive) {
			return order.ErrInvalidStateTransition.WithID(order.Entity, id)
		}
		previous = existing.Clone()

		next := req.toOrder()
		// 新旧明细涉及的图书一次性按ID升序加锁
		if _, err := s.ledger.Lock(ctx, append(existing.BookIDs(), next.BookIDs()...)); err != nil {
			return err
		}
		// 校验时旧明细仍占着库存
		if err := s.validator.Validate(ctx, next); err != nil {
			return err
		}
		if err := s.reservation.Release(ctx, previous); err != nil {
			return err
		}
		if err := s.reservation.Reserve(ctx, next); err != nil {
			return err
		}
		if err := existing.Replace(next); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}
		o = existing
		return nil
	})
	if err != nil {
		s.log.Info("修改订单失败", zap.Stringer("order_id", id), zap.Error(err))
		return nil, err
	}

	countStock(metrics.DirectionRelease, previous)
	countStock(metrics.DirectionReserve, o)
	s.log.Info("订单已修改", zap.Stringer("order_id", o.ID), zap.Int64("total", o.Total))
	s.putCache(ctx, o)
	s.notify(ctx, order.EventUpdate, o)
	return o, nil
}

// DeleteOrder 删除订单并归还库存
// 已软删除的订单仍占用库存,删除时同样归还
func (s *Service) DeleteOrder(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := s.observe(ctx, "delete", attribute.String("order.id", id.String()))
	defer func() { done(err) }()

	var deleted *order.Order
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		holds := existing.State.HoldsReservation()
		if err := existing.TransitionTo(order.StatePurged); err != nil {
			return err
		}
		if holds {
			if err := s.reservation.Release(ctx, existing); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		s.log.Info("删除订单失败", zap.Stringer("order_id", id), zap.Error(err))
		return err
	}

	countStock(metrics.DirectionRelease, deleted)
	s.log.Info("订单已删除", zap.Stringer("order_id", id))
	// 缓存墓碑,防止并发的读库回填把已删除的订单放回缓存
	s.putCache(ctx, deleted)
	s.notify(ctx, order.EventDelete, deleted)
	return nil
}

// SoftDeleteOrder 软删除订单
// 只修改状态,不归还库存
func (s *Service) SoftDeleteOrder(ctx context.Context, id uuid.UUID) (o *order.Order, err error) {
	ctx, done := s.observe(ctx, "soft_delete", attribute.String("order.id", id.String()))
	defer func() { done(err) }()

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := existing.TransitionTo(order.StateSoftDeleted); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}
		o = existing
		return nil
	})
	if err != nil {
		s.log.Info("软删除订单失败", zap.Stringer("order_id", id), zap.Error(err))
		return nil, err
	}

	s.log.Info("订单已软删除", zap.Stringer("order_id", id))
	s.putCache(ctx, o)
	return o, nil
}

// GetOrder 查询订单详情(Cache-Aside)
// 同一订单的并发回源请求通过singleflight合并成一次数据库查询。
// 回填只在key不存在时写入,读库期间提交的写操作已经Put了更新的值。
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	cached, err := s.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.IncCounterVec(metrics.OrderCacheRequests, map[string]string{"result": metrics.ResultFailure})
		s.log.Warn("读取订单缓存失败", zap.Stringer("order_id", id), zap.Error(err))
	case cached != nil:
		metrics.IncCounterVec(metrics.OrderCacheRequests, map[string]string{"result": metrics.ResultHit})
		if cached.State == order.StatePurged {
			return nil, order.NotFound(id)
		}
		return cached, nil
	default:
		metrics.IncCounterVec(metrics.OrderCacheRequests, map[string]string{"result": metrics.ResultMiss})
	}

	v, err, shared := s.loads.Do(id.String(), func() (interface{}, error) {
		o, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.fillCache(ctx, o)
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	o := v.(*order.Order)
	if shared {
		return o.Clone(), nil
	}
	return o, nil
}

// Search 按任意条件分页查询
func (s *Service) Search(ctx context.Context, filter order.Filter, page order.Page) (*order.PageResult, error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &order.PageResult{Items: items, Total: total, Page: page.Page, Size: page.Size}, nil
}

// ListOrders 分页查询全部有效订单
func (s *Service) ListOrders(ctx context.Context, page order.Page) (*order.PageResult, error) {
	return s.Search(ctx, order.Filter{}, page)
}

// ListOrdersByUser 按下单用户分页查询
func (s *Service) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page order.Page) (*order.PageResult, error) {
	return s.Search(ctx, order.ByUser(userID), page)
}

// ListOrdersByClient 按客户分页查询
func (s *Service) ListOrdersByClient(ctx context.Context, clientID uuid.UUID, page order.Page) (*order.PageResult, error) {
	return s.Search(ctx, order.ByClient(clientID), page)
}

// ListOrdersByShop 按门店分页查询
func (s *Service) ListOrdersByShop(ctx context.Context, shopID uuid.UUID, page order.Page) (*order.PageResult, error) {
	return s.Search(ctx, order.ByShop(shopID), page)
}

// ExistsByUser 用户是否下过订单
func (s *Service) ExistsByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.ExistsByUserID(ctx, userID)
}

// observe 开启Span并在结束时记录耗时、结果
func (s *Service) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "OrderService."+op)
	span.SetAttributes(attrs...)
	return ctx, func(err error) {
		metrics.RecordOrderOperation(op, err, time.Since(start).Seconds())
		tracing.EndSpan(span, err)
	}
}

// putCache 写操作提交后覆盖缓存,写不进去就删掉旧值
func (s *Service) putCache(ctx context.Context, o *order.Order) {
	if err := s.cache.Put(ctx, o); err != nil {
		s.log.Warn("写入订单缓存失败", zap.Stringer("order_id", o.ID), zap.Error(err))
		s.invalidateCache(ctx, o.ID)
	}
}

func (s *Service) fillCache(ctx context.Context, o *order.Order) {
	added, err := s.cache.Add(ctx, o)
	if err != nil {
		s.log.Warn("回填订单缓存失败", zap.Stringer("order_id", o.ID), zap.Error(err))
		return
	}
	if !added {
		s.log.Debug("缓存已有更新的订单,跳过回填", zap.Stringer("order_id", o.ID))
	}
}

func (s *Service) invalidateCache(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("删除订单缓存失败", zap.Stringer("order_id", id), zap.Error(err))
	}
}

func (s *Service) notify(ctx context.Context, t order.EventType, o *order.Order) {
	if err := s.notifier.Publish(ctx, order.NewChangeEvent(t, o)); err != nil {
		s.log.Warn("订单变更通知发送失败",
			zap.String("type", string(t)),
			zap.Stringer("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func countStock(direction string, o *order.Order) {
	units := 0
	for _, l := range o.Lines {
		units += l.Quantity
	}
	metrics.AddCounterVec(metrics.StockUnitsTotal, map[string]string{"direction": direction}, float64(units))
}

type nopCache struct{}

func (nopCache) Get(context.Context, uuid.UUID) (*order.Order, error) { return nil, nil }
func (nopCache) Put(context.Context, *order.Order) error              { return nil }
func (nopCache) Add(context.Context, *order.Order) (bool, error)      { return false, nil }
func (nopCache) Invalidate(context.Context, uuid.UUID) error          { return nil }
