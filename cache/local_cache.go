package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ Cache = &MemoryCache{}

type MemoryCacheOption func(m *MemoryCache)

// MemoryCache 进程内的缓存，过期的 key 由 go-cache 的后台 goroutine 轮询清理
type MemoryCache struct {
	data      *gocache.Cache
	onEvicted func(key string, val []byte)
}

// NewMemoryCache interval 是轮询清理的间隔
func NewMemoryCache(interval time.Duration, opts ...MemoryCacheOption) *MemoryCache {
	res := &MemoryCache{
		data: gocache.New(gocache.NoExpiration, interval),
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.onEvicted != nil {
		fn := res.onEvicted
		res.data.OnEvicted(func(key string, val any) {
			fn(key, val.([]byte))
		})
	}
	return res
}

func MemoryCacheWithEvictCallback(fn func(key string, val []byte)) MemoryCacheOption {
	return func(m *MemoryCache) {
		m.onEvicted = fn
	}
}

func (m *MemoryCache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	// 复制一份，调用者之后改 val 不影响缓存
	m.data.Set(key, append([]byte(nil), val...), expiration)
	return nil
}

// Get go-cache 在 Get 的时候会判断有没有过期
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := m.data.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val.([]byte), nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}
