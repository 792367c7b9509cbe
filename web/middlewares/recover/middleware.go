package recover

import (
	"github.com/sirupsen/logrus"

	"pluginstate/web"
)

// MiddlewareBuilder panic 之后返回固定的响应
type MiddlewareBuilder struct {
	StatusCode int
	Data       []byte
	Logger     logrus.FieldLogger
}

func (m MiddlewareBuilder) Build() web.Middleware {
	if m.Logger == nil {
		m.Logger = logrus.StandardLogger()
	}
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			defer func() {
				if err := recover(); err != nil {
					ctx.RespStatusCode = m.StatusCode
					ctx.RespData = m.Data
					m.Logger.WithFields(logrus.Fields{
						"panic": err,
						"path":  ctx.Req.URL.Path,
					}).Error("web: 处理请求时 panic")
				}
			}()
			next(ctx)
		}
	}
}
