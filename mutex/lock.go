package mutex

import (
	"context"
	"sync"
	"time"
)

// 确保 Lock 可以当成 sync.Locker 用
var _ sync.Locker = &Lock{}

type Option func(l *Lock)

// Lock 先来先得的互斥锁
// 释放的时候直接把锁交给队头的等待者，中间不会出现空闲状态，所以不会被第三者插队
// 不支持重入，持有锁的人再次获取会死锁
// 零值可以直接使用
type Lock struct {
	// 只保护下面几个字段，临界区本身不归它管
	mu   sync.Mutex
	held bool
	// 到达序号，每个等待者一个
	ticket uint64
	// 等待队列，按到达顺序排
	waiters []waiter

	name string
	mdls []Middleware
}

// waiter 一个等待者就是一个可以被完成的句柄
type waiter struct {
	ticket uint64
	ready  chan struct{}
}

func New(opts ...Option) *Lock {
	res := &Lock{}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// LockWithName 名字会交给 middleware，用于打点和链路
func LockWithName(name string) Option {
	return func(l *Lock) {
		l.name = name
	}
}

func LockWithMiddlewares(mdls ...Middleware) Option {
	return func(l *Lock) {
		l.mdls = mdls
	}
}

// Acquire 返回一个句柄，句柄可读的时候就代表拿到了锁
// 锁空闲的时候返回的句柄已经是完成状态
func (l *Lock) Acquire() <-chan struct{} {
	ch := make(chan struct{})
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		l.held = true
		close(ch)
		return ch
	}
	l.ticket++
	l.waiters = append(l.waiters, waiter{ticket: l.ticket, ready: ch})
	return ch
}

// Release 有人在等就直接交给队头，没人等才置为空闲
// 没有拿锁就调用 Release 属于使用错误，这里不做检查
func (l *Lock) Release() {
	l.mu.Lock()
	if len(l.waiters) > 0 {
		w := l.waiters[0]
		l.waiters[0] = waiter{}
		l.waiters = l.waiters[1:]
		l.mu.Unlock()
		close(w.ready)
		return
	}
	l.held = false
	l.mu.Unlock()
}

func (l *Lock) Lock() {
	<-l.Acquire()
}

func (l *Lock) Unlock() {
	l.Release()
}

// Held 锁当前是否被持有
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Waiting 排队中的等待者数量
func (l *Lock) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.waiters)
}

// WithLock 拿锁，执行 fn，然后释放
// 不管 fn 是正常返回、返回 error 还是 panic，锁都会先释放，再把结果交给调用者
// 拿锁的过程不响应 ctx 的取消，ctx 只是传给 fn 和 middleware
func (l *Lock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	root := l.section(fn)
	// 从后往前组装，执行的时候从前往后
	for i := len(l.mdls) - 1; i >= 0; i-- {
		root = l.mdls[i](root)
	}
	return root(ctx, &Section{
		Name:       l.name,
		EnqueuedAt: time.Now(),
	})
}

func (l *Lock) section(fn func(ctx context.Context) error) Handler {
	return func(ctx context.Context, sc *Section) error {
		<-l.Acquire()
		sc.AcquiredAt = time.Now()
		defer func() {
			sc.ReleasedAt = time.Now()
			l.Release()
		}()
		return fn(ctx)
	}
}
