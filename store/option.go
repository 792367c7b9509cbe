package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"pluginstate/cache"
	"pluginstate/mutex"
)

type Option func(o *options)

type options struct {
	backend    cache.Cache
	loader     func(ctx context.Context, key string) ([]byte, error)
	codec      Codec
	expiration time.Duration
	remote     RemoteLock
	lock       *mutex.Lock
	mdls       []mutex.Middleware
	logger     logrus.FieldLogger
}

// WithBackend 每次提交都会把快照写进 backend，Load 从 backend 读
func WithBackend(c cache.Cache) Option {
	return func(o *options) {
		o.backend = c
	}
}

// WithLoader backend 里没有快照的时候从 loader 加载，再写回 backend
func WithLoader(loader func(ctx context.Context, key string) ([]byte, error)) Option {
	return func(o *options) {
		o.loader = loader
	}
}

func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithExpiration 快照在 backend 里的过期时间，0 代表永不过期
func WithExpiration(expiration time.Duration) Option {
	return func(o *options) {
		o.expiration = expiration
	}
}

func WithRemoteLock(l RemoteLock) Option {
	return func(o *options) {
		o.remote = l
	}
}

// WithLock 多个 store 共用一把锁的时候用
// 传了锁之后 WithMiddlewares 不再生效，middleware 应该在创建锁的时候指定
func WithLock(l *mutex.Lock) Option {
	return func(o *options) {
		o.lock = l
	}
}

func WithMiddlewares(mdls ...mutex.Middleware) Option {
	return func(o *options) {
		o.mdls = mdls
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}
