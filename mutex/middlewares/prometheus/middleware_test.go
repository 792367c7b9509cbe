package prometheus

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pluginstate/mutex"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	reg := prometheus.NewRegistry()
	builder := MiddlewareBuilder{
		Namespace:  "pluginstate",
		Subsystem:  "mutex",
		Name:       "section_duration_ms",
		Help:       "临界区排队和持有时间",
		Registerer: reg,
	}
	l := mutex.New(mutex.LockWithName("settings"), mutex.LockWithMiddlewares(builder.Build()))

	require.NoError(t, l.WithLock(context.Background(), func(ctx context.Context) error {
		return nil
	}))
	errBiz := errors.New("biz error")
	assert.Equal(t, errBiz, l.WithLock(context.Background(), func(ctx context.Context) error {
		return errBiz
	}))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, "pluginstate_mutex_section_duration_ms", mfs[0].GetName())
	// 一个锁名字，两个 phase
	require.Len(t, mfs[0].GetMetric(), 2)
	for _, m := range mfs[0].GetMetric() {
		assert.Equal(t, uint64(2), m.GetSummary().GetSampleCount())
	}
}
