package mutex

import (
	"context"
	"time"
)

// Section 一次临界区的上下文，middleware 从这里读数据
type Section struct {
	// 锁的名字，没有设置就是空字符串
	Name string
	// 开始排队的时间
	EnqueuedAt time.Time
	// 拿到锁的时间，next 执行完才有值
	AcquiredAt time.Time
	// 释放锁的时间，next 执行完才有值
	ReleasedAt time.Time
}

// Waited 排队等了多久
func (s *Section) Waited() time.Duration {
	if s.AcquiredAt.IsZero() {
		return 0
	}
	return s.AcquiredAt.Sub(s.EnqueuedAt)
}

// Held 持有锁多久
func (s *Section) Held() time.Duration {
	if s.AcquiredAt.IsZero() || s.ReleasedAt.IsZero() {
		return 0
	}
	return s.ReleasedAt.Sub(s.AcquiredAt)
}

type Handler func(ctx context.Context, sc *Section) error

type Middleware func(next Handler) Handler
