// Package metrics 提供基于Prometheus的指标收集
//
// 指标分四组:
//   - HTTP:请求数、耗时、并发中的请求
//   - 订单:按操作(create/update/delete/soft_delete)和结果统计次数与耗时
//   - 库存:预占/归还的件数
//   - 基础设施:订单缓存命中率、变更通知、熔断器状态、补偿次数
//
// 所有指标在包初始化时创建,业务代码可以直接调用辅助函数;
// InitMetrics负责把它们注册到默认Registry(只注册一次),
// 之后通过/metrics端点暴露。
//
// 命名规范:
//   - Counter以_total结尾
//   - Histogram以单位结尾(_seconds)
//   - 标签只用取值有限的维度(operation、result),不要用订单ID
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 结果标签取值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)

// 库存变动方向
const (
	DirectionReserve = "reserve"
	DirectionRelease = "release"
)

var registerOnce sync.Once

var (
	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板)、status
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// OrderOperationsTotal 订单写操作次数
	// 标签:operation(create/update/delete/soft_delete)、result(success/failure)
	OrderOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_operations_total",
			Help: "订单写操作总数",
		},
		[]string{"operation", "result"},
	)

	// OrderOperationDuration 订单写操作耗时(含事务提交)
	OrderOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_operation_duration_seconds",
			Help:    "订单写操作耗时(秒)",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// StockUnitsTotal 库存变动件数
	// 标签:direction(reserve/release)
	StockUnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_units_total",
			Help: "预占/归还的图书件数",
		},
		[]string{"direction"},
	)

	// OrderCacheRequests 订单缓存查询次数
	// 标签:result(hit/miss/failure)
	OrderCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_cache_requests_total",
			Help: "订单缓存查询总数",
		},
		[]string{"result"},
	)

	// ChangeEventsTotal 订单变更通知发送次数
	// 标签:type(CREATE/UPDATE/DELETE)、result(success/failure/rejected)
	ChangeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_change_events_total",
			Help: "订单变更通知发送总数",
		},
		[]string{"type", "result"},
	)

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态(0=CLOSED, 1=OPEN, 2=HALF_OPEN)",
		},
		[]string{"name"},
	)

	// CompensationsTotal 内存事务回滚时执行的补偿步骤数
	CompensationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "compensations_total",
			Help: "补偿步骤执行总数",
		},
	)
)

// InitMetrics 把所有指标注册到默认Registry
// 可以重复调用,只有第一次生效
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestsInProgress,
			OrderOperationsTotal,
			OrderOperationDuration,
			StockUnitsTotal,
			OrderCacheRequests,
			ChangeEventsTotal,
			CircuitBreakerState,
			CompensationsTotal,
		)
	})
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// AddCounter 累加Counter,value不能为负
func AddCounter(counter prometheus.Counter, value float64) {
	counter.Add(value)
}

// IncCounterVec 递增CounterVec(带标签)
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// AddCounterVec 按标签累加
func AddCounterVec(counter *prometheus.CounterVec, labels map[string]string, value float64) {
	counter.With(labels).Add(value)
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值(带标签)
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值(带标签)
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// RecordOrderOperation 记录一次订单写操作的结果和耗时
func RecordOrderOperation(operation string, err error, seconds float64) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	IncCounterVec(OrderOperationsTotal, map[string]string{"operation": operation, "result": result})
	ObserveHistogramVec(OrderOperationDuration, map[string]string{"operation": operation}, seconds)
}
