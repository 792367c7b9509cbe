package opentelemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pluginstate/mutex"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	errBiz := errors.New("biz error")
	testCases := []struct {
		name       string
		fn         func(ctx context.Context) error
		wantErr    error
		wantStatus codes.Code
	}{
		{
			name: "ok",
			fn: func(ctx context.Context) error {
				return nil
			},
			wantStatus: codes.Unset,
		},
		{
			name: "error",
			fn: func(ctx context.Context) error {
				return errBiz
			},
			wantErr:    errBiz,
			wantStatus: codes.Error,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			builder := MiddlewareBuilder{Tracer: tp.Tracer("test")}
			l := mutex.New(mutex.LockWithName("settings"), mutex.LockWithMiddlewares(builder.Build()))

			err := l.WithLock(context.Background(), tc.fn)
			assert.Equal(t, tc.wantErr, err)

			spans := sr.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, "lock-settings", span.Name())
			assert.Equal(t, tc.wantStatus, span.Status().Code)
			assert.Contains(t, span.Attributes(), attribute.String("lock.name", "settings"))
		})
	}
}
