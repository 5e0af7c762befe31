package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-backoffice/pkg/response"
)

// Options 路由开关
type Options struct {
	Mode    string // debug | release | test
	Swagger bool   // 是否挂载 /swagger
}

// New 创建Gin引擎并注册所有路由
//
//	GET    /ping
//	GET    /metrics
//	GET    /api/v1/books            POST /api/v1/books
//	GET    /api/v1/books/:id
//	GET    /api/v1/orders           POST /api/v1/orders
//	GET    /api/v1/orders/:id       PUT  /api/v1/orders/:id    DELETE /api/v1/orders/:id
//	PUT    /api/v1/orders/delete/:id
//	GET    /api/v1/orders/user/:id  /client/:id  /shop/:id
func New(
	opts Options,
	log *zap.Logger,
	auth *middleware.AuthMiddleware,
	books *handler.BookHandler,
	orders *handler.OrderHandler,
) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Tracing(otel.GetTracerProvider()), middleware.Logger(log), middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		bookGroup := v1.Group("/books")
		bookGroup.GET("", books.ListBooks)
		bookGroup.GET("/:id", books.GetBook)
		bookGroup.POST("", auth.RequireAuth(), books.PublishBook)

		orderGroup := v1.Group("/orders")
		orderGroup.Use(auth.RequireAuth())
		{
			orderGroup.GET("", orders.ListOrders)
			orderGroup.POST("", orders.CreateOrder)
			orderGroup.GET("/:id", orders.GetOrder)
			orderGroup.PUT("/:id", orders.UpdateOrder)
			orderGroup.DELETE("/:id", orders.DeleteOrder)
			orderGroup.PUT("/delete/:id", orders.SoftDeleteOrder)
			orderGroup.GET("/user/:id", orders.ListByUser)
			orderGroup.GET("/client/:id", orders.ListByClient)
			orderGroup.GET("/shop/:id", orders.ListByShop)
		}
	}
	return r
}
