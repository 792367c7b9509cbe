package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

var _ Cache = &LRUCache{}

// LRUCache 限制 key 数量的缓存，超过容量淘汰最久没用的
type LRUCache struct {
	data *lru.Cache
}

type lruItem struct {
	val []byte
	// 零值代表没有过期时间
	deadline time.Time
}

func (i lruItem) deadlineBefore(t time.Time) bool {
	return !i.deadline.IsZero() && i.deadline.Before(t)
}

func NewLRUCache(size int, onEvicted func(key string, val []byte)) (*LRUCache, error) {
	data, err := lru.NewWithEvict(size, func(key any, value any) {
		if onEvicted != nil {
			onEvicted(key.(string), value.(lruItem).val)
		}
	})
	if err != nil {
		return nil, err
	}
	return &LRUCache{data: data}, nil
}

func (l *LRUCache) Set(ctx context.Context, key string, val []byte, expiration time.Duration) error {
	var dl time.Time
	if expiration > 0 {
		dl = time.Now().Add(expiration)
	}
	l.data.Add(key, lruItem{val: append([]byte(nil), val...), deadline: dl})
	return nil
}

func (l *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := l.data.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	itm := val.(lruItem)
	if itm.deadlineBefore(time.Now()) {
		l.data.Remove(key)
		return nil, ErrKeyNotFound
	}
	return itm.val, nil
}

func (l *LRUCache) Delete(ctx context.Context, key string) error {
	l.data.Remove(key)
	return nil
}

// Len 当前缓存的 key 数量，包括过期但还没被访问到的
func (l *LRUCache) Len() int {
	return l.data.Len()
}
