package opentelemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"pluginstate/web"
)

const instrumentationName = "pluginstate/web/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() web.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			reqCtx := ctx.Req.Context()
			// 和客户端的 trace 结合在一起
			reqCtx = otel.GetTextMapPropagator().Extract(reqCtx, propagation.HeaderCarrier(ctx.Req.Header))

			reqCtx, span := m.Tracer.Start(reqCtx, "unknown", trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			span.SetAttributes(attribute.String("http.method", ctx.Req.Method))
			span.SetAttributes(attribute.String("http.url", ctx.Req.URL.String()))
			span.SetAttributes(attribute.String("http.host", ctx.Req.Host))

			// 后面的 handler 用这个 ctx，store 里的锁 span 会挂在请求下面
			ctx.Req = ctx.Req.WithContext(reqCtx)
			next(ctx)

			// 执行完 next 才有值
			if ctx.MatchRoute != "" {
				span.SetName(ctx.MatchRoute)
			}
			span.SetAttributes(attribute.Int("http.status_code", ctx.RespStatusCode))
			if ctx.RespStatusCode >= 500 {
				span.SetStatus(codes.Error, string(ctx.RespData))
			}
		}
	}
}
