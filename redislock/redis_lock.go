package redislock

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mocks/cmdable.mock.go -package=mocks -source=redis_lock.go

var (
	ErrFailedToPreemptLock = errors.New("redis-lock: 抢锁失败")
	ErrLockNotHold         = errors.New("redis-lock: 没有持有锁")

	//go:embed lua/unlock.lua
	luaUnlock string
	//go:embed lua/refresh.lua
	luaRefresh string
	//go:embed lua/lock.lua
	luaLock string
)

// Cmdable 加锁用到的命令，redis.Cmdable 天然实现了它
type Cmdable interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Client 用于加锁
type Client struct {
	client Cmdable
}

func NewClient(client Cmdable) *Client {
	return &Client{client: client}
}

// TryLock 只尝试一次，被别人持有就返回 ErrFailedToPreemptLock
func (c *Client) TryLock(ctx context.Context, key string, expiration time.Duration) (*Lock, error) {
	val := uuid.New().String()
	ok, err := c.client.SetNX(ctx, key, val, expiration).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFailedToPreemptLock
	}
	return newLock(c.client, key, val, expiration), nil
}

// Lock 加锁，失败按照 retry 重试，timeout 是单次加锁的超时时间
func (c *Client) Lock(ctx context.Context, key string, expiration time.Duration, timeout time.Duration, retry RetryStrategy) (*Lock, error) {
	// 所有重试共用一个 value，上一次超时但其实成功了的话这一次能认出来
	val := uuid.New().String()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		lctx, cancel := context.WithTimeout(ctx, timeout)
		res, err := c.client.Eval(lctx, luaLock, []string{key}, val, expiration.Milliseconds()).Result()
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if res == "OK" {
			return newLock(c.client, key, val, expiration), nil
		}
		interval, ok := retry.Next()
		if !ok {
			if err == nil {
				err = ErrFailedToPreemptLock
			}
			return nil, fmt.Errorf("redis-lock: 超出重试限制, %w", err)
		}
		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			timer.Reset(interval)
		}
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Lock 代表一把持有中的锁
type Lock struct {
	client     Cmdable
	key        string
	value      string
	expiration time.Duration
	unlockCh   chan struct{}
}

func newLock(client Cmdable, key, value string, expiration time.Duration) *Lock {
	return &Lock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
		unlockCh:   make(chan struct{}, 1),
	}
}

func (l *Lock) Key() string {
	return l.key
}

// AutoRefresh 每隔 interval 续约一次，直到 Unlock；timeout 是单次续约的超时时间
// 续约超时会立刻重试，其他错误直接返回
func (l *Lock) AutoRefresh(interval time.Duration, timeout time.Duration) error {
	// 超时之后还需要继续运行，所以缓冲设置为 1
	timeoutChan := make(chan struct{}, 1)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-timeoutChan:
		case <-l.unlockCh:
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := l.Refresh(ctx)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			timeoutChan <- struct{}{}
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (l *Lock) Unlock(ctx context.Context) error {
	defer func() {
		select {
		case l.unlockCh <- struct{}{}:
		default:
			// 说明没有人调用 AutoRefresh
		}
	}()
	res, err := l.client.Eval(ctx, luaUnlock, []string{l.key}, l.value).Int64()
	if err != nil {
		return err
	}
	if res != 1 {
		return ErrLockNotHold
	}
	return nil
}

func (l *Lock) Refresh(ctx context.Context) error {
	res, err := l.client.Eval(ctx, luaRefresh, []string{l.key}, l.value, l.expiration.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if res != 1 {
		return ErrLockNotHold
	}
	return nil
}

// Locker 把 Client 包装成按 key 串行执行函数的形式
type Locker struct {
	client     *Client
	expiration time.Duration
	timeout    time.Duration
	// 每次加锁都要一个新的重试策略，策略本身有状态
	retry  func() RetryStrategy
	logger logrus.FieldLogger
}

func (c *Client) Locker(expiration time.Duration, timeout time.Duration, retry func() RetryStrategy) *Locker {
	return &Locker{
		client:     c,
		expiration: expiration,
		timeout:    timeout,
		retry:      retry,
		logger:     logrus.StandardLogger(),
	}
}

// WithLock 持有 key 对应的锁执行 fn，执行期间自动续约
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (err error) {
	lock, err := l.client.Lock(ctx, key, l.expiration, l.timeout, l.retry())
	if err != nil {
		return err
	}
	go func() {
		if er := lock.AutoRefresh(l.expiration/2, l.timeout); er != nil {
			l.logger.WithError(er).WithField("key", key).Warn("redis-lock: 自动续约失败")
		}
	}()
	defer func() {
		uctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if er := lock.Unlock(uctx); er != nil && err == nil {
			err = er
		}
	}()
	return fn(ctx)
}
