package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// orderCache 订单详情缓存(Cache-Aside)
// 只缓存单个订单详情,列表查询不走缓存;写操作提交后由应用层覆盖对应key,读库回填用SETNX
type orderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client *redis.Client, ttl time.Duration) order.Cache {
	return &orderCache{client: client, ttl: ttl}
}

// orderCacheKey order:detail:{uuid}
func orderCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("order:detail:%s", id)
}

// cachedOrder 缓存中的JSON结构
type cachedOrder struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"userId"`
	ClientID   uuid.UUID    `json:"clientId"`
	ShopID     uuid.UUID    `json:"shopId"`
	Lines      []cachedLine `json:"lines"`
	Total      int64        `json:"total"`
	TotalBooks int          `json:"totalBooks"`
	State      int          `json:"state"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

type cachedLine struct {
	BookID   uint  `json:"bookId"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
	Total    int64 `json:"total"`
}

// Get 读取缓存,未命中返回(nil, nil)
func (c *orderCache) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	val, err := c.client.Get(ctx, orderCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.ErrRedisError.WithErr(err)
	}

	var co cachedOrder
	if err := json.Unmarshal(val, &co); err != nil {
		// 脏数据当作未命中,顺便删掉
		_ = c.client.Del(ctx, orderCacheKey(id)).Err()
		return nil, nil
	}
	return co.toEntity(), nil
}

// Put 写入缓存(SETEX)
func (c *orderCache) Put(ctx context.Context, o *order.Order) error {
	data, err := json.Marshal(fromEntity(o))
	if err != nil {
		return apperrors.Wrap(err, "订单序列化失败")
	}
	if err := c.client.SetEx(ctx, orderCacheKey(o.ID), data, c.ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

// Add 读库回填(SET NX EX),key已存在说明有更新的写入,不覆盖
func (c *orderCache) Add(ctx context.Context, o *order.Order) (bool, error) {
	data, err := json.Marshal(fromEntity(o))
	if err != nil {
		return false, apperrors.Wrap(err, "订单序列化失败")
	}
	ok, err := c.client.SetNX(ctx, orderCacheKey(o.ID), data, c.ttl).Result()
	if err != nil {
		return false, apperrors.ErrRedisError.WithErr(err)
	}
	return ok, nil
}

// Invalidate 删除缓存,key不存在不算错误
func (c *orderCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, orderCacheKey(id)).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}

func fromEntity(o *order.Order) cachedOrder {
	lines := make([]cachedLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = cachedLine{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: l.Total}
	}
	return cachedOrder{
		ID:         o.ID,
		UserID:     o.UserID,
		ClientID:   o.ClientID,
		ShopID:     o.ShopID,
		Lines:      lines,
		Total:      o.Total,
		TotalBooks: o.TotalBooks,
		State:      int(o.State),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (co cachedOrder) toEntity() *order.Order {
	lines := make([]order.Line, len(co.Lines))
	for i, l := range co.Lines {
		lines[i] = order.Line{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: l.Total}
	}
	return &order.Order{
		ID:         co.ID,
		UserID:     co.UserID,
		ClientID:   co.ClientID,
		ShopID:     co.ShopID,
		Lines:      lines,
		Total:      co.Total,
		TotalBooks: co.TotalBooks,
		State:      order.State(co.State),
		CreatedAt:  co.CreatedAt,
		UpdatedAt:  co.UpdatedAt,
	}
}
