//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后运行 `wire gen ./cmd/api` 重新生成 wire_gen.go

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookstore-backoffice/internal/application/book"
	apporder "github.com/xiebiao/bookstore-backoffice/internal/application/order"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/middleware"
)

// infrastructureSet 配置、日志、存储、缓存、消息
var infrastructureSet = wire.NewSet(
	provideLogger,
	provideStorage,
	provideOrderCache,
	provideNotifier,
)

// repositorySet 从Storage中取出各仓储
var repositorySet = wire.NewSet(
	provideTransactor,
	provideBookRepository,
	provideStockLedger,
	provideOrderRepository,
	provideValidator,
)

var domainSet = wire.NewSet(
	book.NewService,
)

var applicationSet = wire.NewSet(
	appbook.NewCatalogService,
	apporder.NewService,
)

var middlewareSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
)

var handlerSet = wire.NewSet(
	handler.NewBookHandler,
	handler.NewOrderHandler,
)

// InitializeApp 组装整个应用,cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideRouter,
		newApp,
	)
	return nil, nil, nil
}
