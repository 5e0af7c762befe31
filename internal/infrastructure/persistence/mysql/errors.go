package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// MySQL错误码
const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

var errDuplicateEntryApp = apperrors.New(apperrors.ErrCodeDuplicateEntry, "duplicate entry")

// translateError 把驱动/gorm错误翻译成业务错误
//   - 已经是AppError的原样返回
//   - 死锁、锁等待超时 → 并发修改冲突(可重试)
//   - 唯一索引冲突 → 重复记录
//   - 连接断开、超时 → 暂时不可用(可重试)
//   - 其余 → 数据库错误
func translateError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDeadlock, errLockWaitTimeout:
			return order.ErrConcurrentModification.WithErr(err)
		case errDuplicateEntry:
			return errDuplicateEntryApp.WithErr(err)
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errDuplicateEntryApp.WithErr(err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) ||
		errors.As(err, &netErr) {
		return apperrors.Transient(err, "database unavailable")
	}

	return apperrors.ErrDatabaseError.WithErr(err)
}

func isDuplicate(err error) bool {
	return errors.Is(translateError(err), errDuplicateEntryApp)
}
