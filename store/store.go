package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"pluginstate/cache"
	"pluginstate/mutex"
)

const keyPrefix = "pluginstate:"

type snapshot[T any] struct {
	val     T
	version uint64
}

// Store 显式持有的状态容器，不存在包级别的单例
// 所有写入都经过同一把先来先得的锁，读取不需要排队
type Store[T any] struct {
	name       string
	lock       *mutex.Lock
	backend    cache.Cache
	codec      Codec
	expiration time.Duration
	remote     RemoteLock
	logger     logrus.FieldLogger

	cur atomic.Pointer[snapshot[T]]
	// 最近一次写入或者读出的编码结果，只在持有 lock 的时候访问
	persisted []byte
	g         singleflight.Group

	// 保护下面的订阅者
	mu        sync.Mutex
	closed    bool
	nextID    uint64
	listeners []listener[T]
	watchers  map[uint64]*watcher[T]
}

type listener[T any] struct {
	id uint64
	fn func(Change[T])
}

type watcher[T any] struct {
	ch   chan Change[T]
	once sync.Once
}

func (w *watcher[T]) close() {
	w.once.Do(func() {
		close(w.ch)
	})
}

func New[T any](name string, initial T, opts ...Option) *Store[T] {
	o := &options{
		codec:  JSONCodec{},
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.lock == nil {
		o.lock = mutex.New(mutex.LockWithName(name), mutex.LockWithMiddlewares(o.mdls...))
	}
	if o.backend != nil && o.loader != nil {
		o.backend = cache.NewReadThroughCache(o.backend, o.loader, o.expiration)
	}
	s := &Store[T]{
		name:       name,
		lock:       o.lock,
		backend:    o.backend,
		codec:      o.codec,
		expiration: o.expiration,
		remote:     o.remote,
		logger:     o.logger.WithField("store", name),
		watchers:   make(map[uint64]*watcher[T], 4),
	}
	s.cur.Store(&snapshot[T]{val: initial})
	return s
}

func (s *Store[T]) Name() string {
	return s.name
}

// Get 当前快照。T 里面如果有 map 或者切片，调用者不应该修改它们
func (s *Store[T]) Get() T {
	return s.cur.Load().val
}

// Version 每次提交加一
func (s *Store[T]) Version() uint64 {
	return s.cur.Load().version
}

// Update 排队拿锁之后用 fn 计算新值
// fn 返回 error 的时候什么都不提交；成功的时候先持久化，再提交，最后通知订阅者
func (s *Store[T]) Update(ctx context.Context, fn func(ctx context.Context, cur T) (T, error)) error {
	return s.lock.WithLock(ctx, func(ctx context.Context) error {
		if s.isClosed() {
			return ErrClosed
		}
		if s.remote == nil {
			return s.apply(ctx, fn)
		}
		return s.remote.WithLock(ctx, s.key(), func(ctx context.Context) error {
			// 别的进程可能已经改过了
			if err := s.reload(ctx); err != nil {
				return err
			}
			return s.apply(ctx, fn)
		})
	})
}

// Set 直接覆盖
func (s *Store[T]) Set(ctx context.Context, val T) error {
	return s.Update(ctx, func(ctx context.Context, cur T) (T, error) {
		return val, nil
	})
}

// Load 从 backend 读取快照，没有快照的时候保留当前值
// 同一时刻的多次 Load 只会真正读一次
func (s *Store[T]) Load(ctx context.Context) error {
	_, err, _ := s.g.Do(s.key(), func() (interface{}, error) {
		return nil, s.lock.WithLock(ctx, func(ctx context.Context) error {
			if s.isClosed() {
				return ErrClosed
			}
			return s.reload(ctx)
		})
	})
	return err
}

// Subscribe 每次提交都会按提交顺序回调 fn
// fn 执行的时候还持有着锁，不能在里面 Update 同一个 store，否则会死锁
func (s *Store[T]) Subscribe(fn func(Change[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Watch 返回一个带缓冲的 channel，缓冲满了的时候这次变更对这个 watcher 直接丢掉
// 第二个返回值用于取消，取消之后 channel 会被关闭
func (s *Store[T]) Watch(capacity int) (<-chan Change[T], func()) {
	w := &watcher[T]{ch: make(chan Change[T], capacity)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		w.close()
		return w.ch, func() {}
	}
	s.nextID++
	id := s.nextID
	s.watchers[id] = w
	return w.ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
		w.close()
	}
}

// Close 关闭所有的 watcher，之后的 Update 和 Load 返回 ErrClosed
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, w := range s.watchers {
		w.close()
		delete(s.watchers, id)
	}
	s.listeners = nil
}

func (s *Store[T]) key() string {
	return keyPrefix + s.name
}

func (s *Store[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store[T]) apply(ctx context.Context, fn func(ctx context.Context, cur T) (T, error)) error {
	old := s.cur.Load()
	val, err := fn(ctx, old.val)
	if err != nil {
		return err
	}
	if s.backend != nil {
		data, err := s.codec.Marshal(val)
		if err != nil {
			return fmt.Errorf("store: 序列化失败, %w", err)
		}
		if err = s.backend.Set(ctx, s.key(), data, s.expiration); err != nil {
			return fmt.Errorf("store: 持久化失败, %w", err)
		}
		s.persisted = data
	}
	s.commit(old, val)
	return nil
}

func (s *Store[T]) reload(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	data, err := s.backend.Get(ctx, s.key())
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: 读取快照失败, %w", err)
	}
	if bytes.Equal(data, s.persisted) {
		return nil
	}
	var val T
	if err = s.codec.Unmarshal(data, &val); err != nil {
		return fmt.Errorf("store: 反序列化失败, %w", err)
	}
	s.persisted = data
	s.commit(s.cur.Load(), val)
	return nil
}

// commit 只在持有 lock 的时候调用，所以订阅者看到的顺序就是提交顺序
func (s *Store[T]) commit(old *snapshot[T], val T) {
	next := &snapshot[T]{val: val, version: old.version + 1}
	s.cur.Store(next)
	s.logger.WithField("version", next.version).Debug("store: 提交")
	s.publish(Change[T]{Old: old.val, New: val, Version: next.version})
}

func (s *Store[T]) publish(c Change[T]) {
	s.mu.Lock()
	listeners := s.listeners
	for _, w := range s.watchers {
		select {
		case w.ch <- c:
		default:
			s.logger.WithField("version", c.Version).Warn("store: watcher 缓冲已满，丢弃变更")
		}
	}
	s.mu.Unlock()
	// 回调的时候不持有 mu，回调里面可以再订阅或者取消订阅
	for _, l := range listeners {
		l.fn(c)
	}
}
