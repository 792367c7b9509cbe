package recover

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pluginstate/web"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	logger, hook := test.NewNullLogger()
	builder := MiddlewareBuilder{
		StatusCode: http.StatusInternalServerError,
		Data:       []byte("你 panic 了"),
		Logger:     logger,
	}
	server := web.NewHTTPServer(web.ServerWithMiddleware(builder.Build()))
	server.Get("/plugins", func(ctx *web.Context) {
		panic("发生 panic 了")
	})

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/plugins", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "你 panic 了", recorder.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "发生 panic 了", hook.LastEntry().Data["panic"])
}
