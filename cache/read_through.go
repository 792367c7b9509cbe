package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	errFailToRefreshCache = errors.New("cache: 刷新缓存失败")
)

// ReadThroughCache 缓存里没有的时候调用 LoadFunc 加载，再写回缓存
// 同一个 key 的并发加载通过 singleflight 合并成一次
type ReadThroughCache struct {
	Cache
	LoadFunc   func(ctx context.Context, key string) ([]byte, error)
	Expiration time.Duration
	g          singleflight.Group
}

func NewReadThroughCache(c Cache, loadFunc func(ctx context.Context, key string) ([]byte, error), expiration time.Duration) *ReadThroughCache {
	return &ReadThroughCache{
		Cache:      c,
		LoadFunc:   loadFunc,
		Expiration: expiration,
	}
}

func (r *ReadThroughCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.Cache.Get(ctx, key)
	if err != ErrKeyNotFound || r.LoadFunc == nil {
		return val, err
	}
	res, err, _ := r.g.Do(key, func() (interface{}, error) {
		v, er := r.LoadFunc(ctx, key)
		if er != nil {
			return nil, er
		}
		if er = r.Cache.Set(ctx, key, v, r.Expiration); er != nil {
			return v, fmt.Errorf("%w, 原因: %s", errFailToRefreshCache, er.Error())
		}
		return v, nil
	})
	if res == nil {
		return nil, err
	}
	return res.([]byte), err
}
