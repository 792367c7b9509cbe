package store

import (
	"context"
	"errors"
)

var (
	ErrClosed = errors.New("store: 已经关闭")
)

// Change 一次提交
type Change[T any] struct {
	Old     T
	New     T
	Version uint64
}

// RemoteLock 跨进程的锁，多个进程共享同一个 backend 的时候用它串行化写入
type RemoteLock interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
