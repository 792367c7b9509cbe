package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"pluginstate/mutex"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	// 为空就注册到默认的 Registerer
	Registerer prometheus.Registerer
}

// Build 记录排队时间和持有时间，单位毫秒，phase 取 wait 或者 hold
func (m MiddlewareBuilder) Build() mutex.Middleware {
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
	}, []string{"lock", "phase"})
	reg := m.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(vector)
	return func(next mutex.Handler) mutex.Handler {
		return func(ctx context.Context, sc *mutex.Section) error {
			// next 可能 panic，所以放在 defer 里
			defer func() {
				vector.WithLabelValues(sc.Name, "wait").Observe(float64(sc.Waited().Milliseconds()))
				vector.WithLabelValues(sc.Name, "hold").Observe(float64(sc.Held().Milliseconds()))
			}()
			return next(ctx, sc)
		}
	}
}
