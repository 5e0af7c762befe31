package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-backoffice/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 1. 连接池参数来自配置
// 2. debug模式打印SQL
// 3. auto_migrate开启时自动建表(生产环境应使用迁移脚本)
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cfg.Database.DSN()), cfg.Server.Mode == "debug")
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return db, nil
}

// Open 用指定方言打开gorm连接,测试中传入sqlite方言
func Open(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().Truncate(time.Microsecond) },
	})
}

// AutoMigrate 自动迁移表结构
// 只会建表、加字段,不会删除或修改已有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&OrderModel{},
		&OrderLineModel{},
		&UserModel{},
		&ClientModel{},
		&ShopModel{},
	)
}
