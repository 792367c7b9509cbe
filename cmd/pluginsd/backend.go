package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"pluginstate/cache"
	"pluginstate/redislock"
	"pluginstate/store"
)

// backend 快照存储，以及关闭的时候要释放的资源
type backend struct {
	cache  cache.Cache
	remote store.RemoteLock
	close  func() error
}

func newBackend(ctx context.Context, cfg StoreConfig, lockCfg LockConfig) (*backend, error) {
	switch cfg.Backend {
	case "memory":
		return &backend{
			cache: cache.NewMemoryCache(time.Minute),
			close: func() error { return nil },
		}, nil
	case "lru":
		c, err := cache.NewLRUCache(cfg.LRUSize, nil)
		if err != nil {
			return nil, err
		}
		return &backend{cache: c, close: func() error { return nil }}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("pluginsd: 连接 redis 失败, %w", err)
		}
		b := &backend{cache: cache.NewRedisCache(client), close: client.Close}
		if cfg.Redis.RemoteLock {
			b.remote = redislock.NewClient(client).Locker(lockCfg.Expiration, lockCfg.Timeout, func() redislock.RetryStrategy {
				return &redislock.FixedIntervalRetryStrategy{
					Interval: lockCfg.RetryInterval,
					MaxCnt:   lockCfg.RetryMax,
				}
			})
		}
		return b, nil
	case "sqlite":
		return newSQLBackend(ctx, "sqlite3", cfg, cache.DialectSQLite)
	case "mysql":
		return newSQLBackend(ctx, "mysql", cfg, cache.DialectMySQL)
	default:
		return nil, fmt.Errorf("pluginsd: 未知的存储 %q", cfg.Backend)
	}
}

func newSQLBackend(ctx context.Context, driver string, cfg StoreConfig, dialect cache.Dialect) (*backend, error) {
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	c := cache.NewSQLCache(db, cache.SQLCacheWithTable(cfg.Table), cache.SQLCacheWithDialect(dialect))
	if err = c.CreateTable(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pluginsd: 建表失败, %w", err)
	}
	return &backend{cache: c, close: db.Close}, nil
}

func newCodec(name string) (store.Codec, error) {
	switch name {
	case "", "json":
		return store.JSONCodec{}, nil
	case "proto":
		return store.ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("pluginsd: 未知的编码 %q", name)
	}
}
