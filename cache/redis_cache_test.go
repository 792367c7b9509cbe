package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"pluginstate/cache/mocks"
)

func TestRedisCache_Set(t *testing.T) {
	testCases := []struct {
		name       string
		mock       func(ctrl *gomock.Controller) Cmdable
		key        string
		val        []byte
		expiration time.Duration
		wantErr    error
	}{
		{
			name: "set val",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStatusCmd(context.Background())
				status.SetVal("OK")
				cmd.EXPECT().Set(context.Background(), "settings", []byte(`{"a":1}`), time.Second).Return(status)
				return cmd
			},
			key:        "settings",
			val:        []byte(`{"a":1}`),
			expiration: time.Second,
		},
		{
			name: "timeout",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStatusCmd(context.Background())
				status.SetErr(context.DeadlineExceeded)
				cmd.EXPECT().Set(context.Background(), "settings", []byte(`{"a":1}`), time.Second).Return(status)
				return cmd
			},
			key:        "settings",
			val:        []byte(`{"a":1}`),
			expiration: time.Second,
			wantErr:    context.DeadlineExceeded,
		},
		{
			name: "unexpected msg",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStatusCmd(context.Background())
				status.SetVal("not ok")
				cmd.EXPECT().Set(context.Background(), "settings", []byte(`{"a":1}`), time.Second).Return(status)
				return cmd
			},
			key:        "settings",
			val:        []byte(`{"a":1}`),
			expiration: time.Second,
			wantErr:    fmt.Errorf("%w, res: %s", errFailedToSetCache, "not ok"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			rdb := NewRedisCache(tc.mock(ctrl))
			err := rdb.Set(context.Background(), tc.key, tc.val, tc.expiration)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestRedisCache_Get(t *testing.T) {
	testCases := []struct {
		name    string
		mock    func(ctrl *gomock.Controller) Cmdable
		key     string
		wantErr error
		wantVal []byte
	}{
		{
			name: "get val",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStringCmd(context.Background())
				status.SetVal(`{"a":1}`)
				cmd.EXPECT().Get(context.Background(), "settings").Return(status)
				return cmd
			},
			key:     "settings",
			wantVal: []byte(`{"a":1}`),
		},
		{
			name: "key not found",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStringCmd(context.Background())
				status.SetErr(redis.Nil)
				cmd.EXPECT().Get(context.Background(), "settings").Return(status)
				return cmd
			},
			key:     "settings",
			wantErr: ErrKeyNotFound,
		},
		{
			name: "timeout",
			mock: func(ctrl *gomock.Controller) Cmdable {
				cmd := mocks.NewMockCmdable(ctrl)
				status := redis.NewStringCmd(context.Background())
				status.SetErr(context.DeadlineExceeded)
				cmd.EXPECT().Get(context.Background(), "settings").Return(status)
				return cmd
			},
			key:     "settings",
			wantErr: context.DeadlineExceeded,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			rdb := NewRedisCache(tc.mock(ctrl))
			val, err := rdb.Get(context.Background(), tc.key)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, val)
		})
	}
}

func TestRedisCache_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	cmd := mocks.NewMockCmdable(ctrl)
	res := redis.NewIntCmd(context.Background())
	res.SetVal(1)
	cmd.EXPECT().Del(context.Background(), "settings").Return(res)
	assert.NoError(t, NewRedisCache(cmd).Delete(context.Background(), "settings"))
}
