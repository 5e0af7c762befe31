package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apporder "github.com/xiebiao/bookstore-backoffice/internal/application/order"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/router"
	"github.com/xiebiao/bookstore-backoffice/pkg/jwt"
	"github.com/xiebiao/bookstore-backoffice/pkg/logger"
	"github.com/xiebiao/bookstore-backoffice/pkg/mq"
)

// App 组装完成的服务
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	server *http.Server
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine) *App {
	return &App{
		cfg: cfg,
		log: log,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Storage 按server.store选择的一组存储实现
type Storage struct {
	Tx      apporder.Transactor
	Books   book.Repository
	Ledger  book.StockLedger
	Orders  order.Repository
	Users   directory.Store
	Clients directory.Store
	Shops   directory.Store
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(logger.Options{
		Service:      "bookstore-backoffice",
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(log)
	return log, func() { logger.Sync(log) }, nil
}

func provideStorage(cfg *config.Config, log *zap.Logger) (*Storage, func(), error) {
	if cfg.Server.Store == "memory" {
		return newMemoryStorage(cfg, log), func() {}, nil
	}

	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &Storage{
		Tx:      mysql.NewTxManager(db, cfg.Order.TxTimeout),
		Books:   mysql.NewBookRepository(db),
		Ledger:  mysql.NewStockLedger(db),
		Orders:  mysql.NewOrderRepository(db),
		Users:   mysql.NewUserStore(db),
		Clients: mysql.NewClientStore(db),
		Shops:   mysql.NewShopStore(db),
	}, cleanup, nil
}

// 内存模式下预置的演示数据
var (
	demoUserID   = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	demoClientID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
	demoShopID   = uuid.MustParse("00000000-0000-4000-8000-000000000003")
)

func newMemoryStorage(cfg *config.Config, log *zap.Logger) *Storage {
	s := memory.NewStore()
	users := memory.NewDirectoryStore(s, directory.KindUser)
	clients := memory.NewDirectoryStore(s, directory.KindClient)
	shops := memory.NewDirectoryStore(s, directory.KindShop)
	users.Add(demoUserID)
	clients.Add(demoClientID)
	shops.Add(demoShopID)

	log.Warn("使用内存存储,重启后数据丢失",
		zap.String("user_id", demoUserID.String()),
		zap.String("client_id", demoClientID.String()),
		zap.String("shop_id", demoShopID.String()),
	)
	return &Storage{
		Tx:      memory.NewTxManager(cfg.Order.TxTimeout, log),
		Books:   memory.NewBookRepository(s),
		Ledger:  memory.NewStockLedger(s),
		Orders:  memory.NewOrderRepository(s),
		Users:   users,
		Clients: clients,
		Shops:   shops,
	}
}

func provideTransactor(s *Storage) apporder.Transactor { return s.Tx }

func provideBookRepository(s *Storage) book.Repository { return s.Books }

func provideStockLedger(s *Storage) book.StockLedger { return s.Ledger }

func provideOrderRepository(s *Storage) order.Repository { return s.Orders }

// provideValidator 三个目录Store类型相同,不能交给wire按类型注入
func provideValidator(s *Storage) *order.Validator {
	return order.NewValidator(s.Users, s.Clients, s.Shops, s.Ledger)
}

// provideOrderCache cache.enabled=false时返回nil,服务会退化为直接读库
func provideOrderCache(cfg *config.Config, log *zap.Logger) (order.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewOrderCache(client, cfg.Cache.OrderTTL), func() { _ = client.Close() }, nil
}

func provideNotifier(cfg *config.Config, log *zap.Logger) (order.Notifier, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		return messaging.NewNoopNotifier(log), func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn("关闭RabbitMQ连接失败", zap.Error(err))
		}
	}
	return messaging.NewChangeNotifier(publisher, cfg.RabbitMQ, log), cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpire)
}

func provideRouter(
	cfg *config.Config,
	log *zap.Logger,
	auth *middleware.AuthMiddleware,
	books *handler.BookHandler,
	orders *handler.OrderHandler,
) *gin.Engine {
	return router.New(router.Options{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
	}, log, auth, books, orders)
}

// Run 启动HTTP服务,ctx取消后优雅退出
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("服务启动", zap.String("addr", a.server.Addr), zap.String("store", a.cfg.Server.Store))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}
