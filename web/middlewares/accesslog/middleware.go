package accesslog

import (
	"time"

	"github.com/sirupsen/logrus"

	"pluginstate/web"
)

type MiddlewareBuilder struct {
	logger logrus.FieldLogger
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logger: logrus.StandardLogger(),
	}
}

func (m *MiddlewareBuilder) Logger(l logrus.FieldLogger) *MiddlewareBuilder {
	m.logger = l
	return m
}

func (m *MiddlewareBuilder) Build() web.Middleware {
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			start := time.Now()
			// 用 defer，next 可能会 panic
			defer func() {
				m.logger.WithFields(logrus.Fields{
					"host":        ctx.Req.Host,
					"route":       ctx.MatchRoute,
					"http_method": ctx.Req.Method,
					"path":        ctx.Req.URL.Path,
					"status":      ctx.RespStatusCode,
					"duration":    time.Since(start),
				}).Info("web: access")
			}()
			next(ctx)
		}
	}
}
