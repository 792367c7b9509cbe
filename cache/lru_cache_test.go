package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_Evict(t *testing.T) {
	var evicted []string
	c, err := NewLRUCache(2, func(key string, val []byte) {
		evicted = append(evicted, key)
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key1", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "key2", []byte("2"), 0))
	// 访问一下 key1，淘汰的就是 key2
	_, err = c.Get(ctx, "key1")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "key3", []byte("3"), 0))

	assert.Equal(t, []string{"key2"}, evicted)
	assert.Equal(t, 2, c.Len())
	_, err = c.Get(ctx, "key2")
	assert.Equal(t, ErrKeyNotFound, err)
}

func TestLRUCache_Get(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		cache   func() *LRUCache
		wantVal []byte
		wantErr error
	}{
		{
			name: "key not found",
			key:  "key1",
			cache: func() *LRUCache {
				c, err := NewLRUCache(10, nil)
				require.NoError(t, err)
				return c
			},
			wantErr: ErrKeyNotFound,
		},
		{
			name: "get value",
			key:  "key1",
			cache: func() *LRUCache {
				c, err := NewLRUCache(10, nil)
				require.NoError(t, err)
				require.NoError(t, c.Set(context.Background(), "key1", []byte("1"), time.Minute))
				return c
			},
			wantVal: []byte("1"),
		},
		{
			name: "expiration",
			key:  "key1",
			cache: func() *LRUCache {
				c, err := NewLRUCache(10, nil)
				require.NoError(t, err)
				require.NoError(t, c.Set(context.Background(), "key1", []byte("1"), time.Millisecond))
				time.Sleep(5 * time.Millisecond)
				return c
			},
			wantErr: ErrKeyNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, err := tc.cache().Get(context.Background(), tc.key)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, val)
		})
	}
}

func TestNewLRUCache_InvalidSize(t *testing.T) {
	_, err := NewLRUCache(0, nil)
	assert.Error(t, err)
}
