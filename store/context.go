package store

import "context"

// 每个 T 一个 key 类型，不同类型的 store 互不干扰
type contextKey[T any] struct{}

func NewContext[T any](ctx context.Context, s *Store[T]) context.Context {
	return context.WithValue(ctx, contextKey[T]{}, s)
}

func FromContext[T any](ctx context.Context) (*Store[T], bool) {
	s, ok := ctx.Value(contextKey[T]{}).(*Store[T])
	return s, ok
}
