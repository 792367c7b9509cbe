package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pluginstate/web"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	// 为空就注册到默认的 Registerer
	Registerer prometheus.Registerer
}

// Build 按命中的路由、方法和状态码记录响应时间，单位毫秒
func (m MiddlewareBuilder) Build() web.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"pattern", "method", "status"})
	reg := m.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(vector)
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			start := time.Now()
			defer func() {
				duration := time.Since(start).Milliseconds()
				pattern := ctx.MatchRoute
				// 没有命中路由的请求都归到一起，避免 label 爆炸
				if pattern == "" {
					pattern = "unknown"
				}
				vector.WithLabelValues(pattern, ctx.Req.Method, strconv.Itoa(ctx.RespStatusCode)).
					Observe(float64(duration))
			}()
			next(ctx)
		}
	}
}
