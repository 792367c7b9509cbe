package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound 所有实现在 key 不存在或者已经过期的时候都返回它
	ErrKeyNotFound = errors.New("cache: 没有对应key的值")
)

// Cache 存放序列化之后的状态快照
type Cache interface {
	// Set expiration 为 0 代表永不过期
	Set(ctx context.Context, key string, val []byte, expiration time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
