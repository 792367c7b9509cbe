package opentelemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"pluginstate/mutex"
)

const instrumentationName = "pluginstate/mutex/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() mutex.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next mutex.Handler) mutex.Handler {
		return func(ctx context.Context, sc *mutex.Section) error {
			// span name : lock-settings
			spanCtx, span := m.Tracer.Start(ctx, fmt.Sprintf("lock-%s", sc.Name))
			defer span.End()
			span.SetAttributes(attribute.String("lock.name", sc.Name))
			span.SetAttributes(attribute.String("component", "mutex"))

			err := next(spanCtx, sc)
			// 执行完 next 才有值
			span.SetAttributes(attribute.Int64("lock.wait_ms", sc.Waited().Milliseconds()))
			span.SetAttributes(attribute.Int64("lock.hold_ms", sc.Held().Milliseconds()))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
