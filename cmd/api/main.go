package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-backoffice/pkg/metrics"
	"github.com/xiebiao/bookstore-backoffice/pkg/tracing"
)

// @title           Bookstore Back Office API
// @version         1.0
// @description     图书后台:订单履约与库存预占
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	metrics.InitMetrics()

	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	defer cleanup()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			app.log.Warn("初始化链路追踪失败,继续运行", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					app.log.Warn("关闭TracerProvider失败", zap.Error(err))
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		app.log.Error("服务异常退出", zap.Error(err))
		return
	}
	app.log.Info("服务已停止")
}
