package errors

import (
	"errors"
	"fmt"
)

// Kind 错误类别
// 上层(HTTP/CLI)只依赖Kind决定状态码,不关心具体错误码
type Kind int

const (
	KindInternal   Kind = iota // 内部错误
	KindNotFound               // 引用的实体不存在
	KindConflict               // 与当前数据状态冲突(库存不足、并发修改)
	KindBadRequest             // 请求本身不合法,换个请求才可能成功
	KindTransient              // 基础设施暂时不可用,可重试
	KindUnauthorized           // 未登录或Token无效
	KindForbidden              // 已登录但无权限
)

// String 实现Stringer接口
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindTransient:
		return "transient"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，errors.Is按Code比较
// 2. Entity/ID携带出错的实体类型和标识(如 book / 42)
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Entity  string `json:"entity,omitempty"`
	ID      string `json:"id,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.Entity != "" {
		msg = fmt.Sprintf("%s (%s=%s)", msg, e.Entity, e.ID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一错误码视为同一种错误
// 这样 WithID 派生出的错误仍然可以和包级哨兵错误比较
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable 是否值得原样重试
func (e *AppError) Retryable() bool {
	return e.Kind == KindTransient || e.Code == ErrCodeConcurrentModification
}

// WithID 复制错误并附带实体标识
func (e *AppError) WithID(entity string, id any) *AppError {
	cp := *e
	cp.Entity = entity
	cp.ID = fmt.Sprint(id)
	return &cp
}

// WithErr 复制错误并附带底层原因
func (e *AppError) WithErr(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的AppError，Kind由错误码推断
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindOf(code),
		Message: message,
	}
}

// NotFound 创建带实体上下文的"不存在"错误
func NotFound(code int, entity string, id any) *AppError {
	return New(code, entity+" not found").WithID(entity, id)
}

// Wrap 包装系统错误（如数据库错误、序列化错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Transient 包装可重试的基础设施错误(连接断开、超时)
func Transient(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Kind:    KindTransient,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeUnavailable   = 50003 // 依赖服务暂不可用

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound   = 40401 // 用户不存在
	ErrCodeBookNotFound   = 40402 // 图书不存在
	ErrCodeOrderNotFound  = 40403 // 订单不存在
	ErrCodeClientNotFound = 40404 // 客户不存在
	ErrCodeShopNotFound   = 40405 // 门店不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError          = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock      = 40001 // 库存不足
	ErrCodeInvalidOrderState      = 40002 // 订单状态不允许此操作
	ErrCodeISBNDuplicate          = 40004 // ISBN已存在
	ErrCodePriceMismatch          = 40006 // 单价与目录价不一致
	ErrCodeOrderHasNoItems        = 40007 // 订单没有明细
	ErrCodeConcurrentModification = 40008 // 并发修改冲突
	ErrCodeDuplicateEntry         = 40009 // 重复记录(通用)

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// kindOf 错误码 → 错误类别
func kindOf(code int) Kind {
	switch {
	case code == ErrCodeUnavailable:
		return KindTransient
	case code >= 50000:
		return KindInternal
	case code == ErrCodeForbidden:
		return KindForbidden
	case code >= 40100 && code < 40200:
		return KindUnauthorized
	case code >= 40400 && code < 40500:
		return KindNotFound
	case code == ErrCodeInsufficientStock,
		code == ErrCodeConcurrentModification,
		code == ErrCodeDuplicateEntry,
		code == ErrCodeISBNDuplicate:
		return KindConflict
	default:
		return KindBadRequest
	}
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "internal error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrRedisError    = New(ErrCodeRedisError, "cache error")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "login required")
	ErrInvalidToken = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "token expired")
	ErrForbidden    = New(ErrCodeForbidden, "forbidden")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "malformed request body")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal error")
}

// KindOf 返回任意错误的类别
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return GetAppError(err).Kind
}
