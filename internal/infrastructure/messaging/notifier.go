package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-backoffice/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-backoffice/pkg/metrics"
)

// entityOrders 事件信封中的实体名
const entityOrders = "ORDERS"

// Publisher 消息发布接口,由mq.Publisher实现
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Envelope 变更通知的消息体
type Envelope struct {
	Entity    string    `json:"entity"`
	Type      string    `json:"type"`
	Data      OrderData `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderData 订单快照
type OrderData struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	ClientID   uuid.UUID  `json:"clientId"`
	ShopID     uuid.UUID  `json:"shopId"`
	Lines      []LineData `json:"lines"`
	Total      int64      `json:"total"`
	TotalBooks int        `json:"totalBooks"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// LineData 明细快照
type LineData struct {
	BookID   uint  `json:"bookId"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
	Total    int64 `json:"total"`
}

// NewEnvelope 把领域事件转换成消息体
func NewEnvelope(e order.ChangeEvent) Envelope {
	o := e.Order
	lines := make([]LineData, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineData{BookID: l.BookID, Quantity: l.Quantity, Price: l.Price, Total: l.Total}
	}
	return Envelope{
		Entity: entityOrders,
		Type:   string(e.Type),
		Data: OrderData{
			ID:         o.ID,
			UserID:     o.UserID,
			ClientID:   o.ClientID,
			ShopID:     o.ShopID,
			Lines:      lines,
			Total:      o.Total,
			TotalBooks: o.TotalBooks,
			State:      o.State.String(),
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		},
		CreatedAt: e.OccurredAt,
	}
}

// RoutingKey orders.create / orders.update / orders.delete
func RoutingKey(t order.EventType) string {
	return "orders." + strings.ToLower(string(t))
}

// ChangeNotifier 通过RabbitMQ发送订单变更通知
// MQ持续失败时熔断器打开,后续通知直接丢弃,不拖慢下单请求
type ChangeNotifier struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	log       *zap.Logger
}

// NewChangeNotifier 创建变更通知器
func NewChangeNotifier(publisher Publisher, cfg config.RabbitMQConfig, log *zap.Logger) *ChangeNotifier {
	breaker := circuitbreaker.NewCircuitBreaker("order-notifier", circuitbreaker.Config{
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.BreakerFailures),
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		},
	})
	return &ChangeNotifier{publisher: publisher, breaker: breaker, log: log}
}

// Publish 发送变更通知
func (n *ChangeNotifier) Publish(ctx context.Context, e order.ChangeEvent) error {
	if e.Order == nil {
		return fmt.Errorf("变更事件缺少订单数据")
	}

	err := n.breaker.Execute(func() error {
		return n.publisher.Publish(ctx, RoutingKey(e.Type), NewEnvelope(e))
	})

	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = metrics.ResultRejected
	case err != nil:
		result = metrics.ResultFailure
	}
	metrics.IncCounterVec(metrics.ChangeEventsTotal, map[string]string{"type": string(e.Type), "result": result})

	if err != nil {
		return fmt.Errorf("发送订单变更通知失败: %w", err)
	}
	return nil
}

// NoopNotifier 未启用MQ时使用,只打印调试日志
type NoopNotifier struct {
	log *zap.Logger
}

// NewNoopNotifier 创建空通知器
func NewNoopNotifier(log *zap.Logger) *NoopNotifier {
	return &NoopNotifier{log: log}
}

func (n *NoopNotifier) Publish(_ context.Context, e order.ChangeEvent) error {
	if e.Order != nil {
		n.log.Debug("订单变更(未发送)", zap.String("type", string(e.Type)), zap.Stringer("order_id", e.Order.ID))
	}
	return nil
}
