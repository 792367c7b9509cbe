package slowlog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"pluginstate/mutex"
)

type MiddlewareBuilder struct {
	// 持有锁超过这个时间就打日志
	threshold time.Duration
	logger    logrus.FieldLogger
}

func NewMiddlewareBuilder(threshold time.Duration) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		threshold: threshold,
		logger:    logrus.StandardLogger(),
	}
}

func (m *MiddlewareBuilder) Logger(logger logrus.FieldLogger) *MiddlewareBuilder {
	m.logger = logger
	return m
}

func (m MiddlewareBuilder) Build() mutex.Middleware {
	return func(next mutex.Handler) mutex.Handler {
		return func(ctx context.Context, sc *mutex.Section) error {
			defer func() {
				held := sc.Held()
				if held < m.threshold {
					return
				}
				m.logger.WithFields(logrus.Fields{
					"lock": sc.Name,
					"wait": sc.Waited(),
					"hold": held,
				}).Warn("mutex: 临界区执行过慢")
			}()
			return next(ctx, sc)
		}
	}
}
