// Package saga 补偿日志
//
// 存储本身不支持多行事务时,用补偿日志保证"要么全部生效,要么全部撤销":
// 1. 每完成一步修改,立即记录它的逆操作
// 2. 整个工作单元失败时,按逆序执行已记录的逆操作
// 3. 某个逆操作失败不影响后续逆操作,所有错误聚合后返回
//
//	log := saga.NewLog()
//	ctx = saga.WithLog(ctx, log)
//	if err := work(ctx); err != nil {
//	    _ = log.Compensate(context.Background())
//	}
package saga

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Step 一条已生效操作的逆操作
type Step struct {
	Name       string
	Compensate func(ctx context.Context) error
}

// Log 补偿日志,并发安全
type Log struct {
	mu    sync.Mutex
	steps []Step
}

// NewLog 创建空的补偿日志
func NewLog() *Log {
	return &Log{}
}

// Record 记录一步逆操作
func (l *Log) Record(name string, compensate func(ctx context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, Step{Name: name, Compensate: compensate})
}

// Len 已记录的步骤数
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.steps)
}

// Compensate 逆序执行所有逆操作并清空日志
// 返回执行的步骤数和聚合后的错误
func (l *Log) Compensate(ctx context.Context) (int, error) {
	l.mu.Lock()
	steps := l.steps
	l.steps = nil
	l.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].Compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("补偿[%s]失败: %w", steps[i].Name, err))
		}
	}
	return len(steps), errors.Join(errs...)
}

// Discard 提交成功后丢弃日志
func (l *Log) Discard() {
	l.mu.Lock()
	l.steps = nil
	l.mu.Unlock()
}

type logKey struct{}

// WithLog 把补偿日志放入context
func WithLog(ctx context.Context, l *Log) context.Context {
	return context.WithValue(ctx, logKey{}, l)
}

// FromContext 取出context中的补偿日志
func FromContext(ctx context.Context) (*Log, bool) {
	l, ok := ctx.Value(logKey{}).(*Log)
	return l, ok
}
