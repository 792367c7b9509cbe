package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_ServeHTTP(t *testing.T) {
	var order []string
	mdl := func(name string) Middleware {
		return func(next HandleFunc) HandleFunc {
			return func(ctx *Context) {
				order = append(order, name+" before")
				next(ctx)
				order = append(order, name+" after")
			}
		}
	}
	s := NewHTTPServer(ServerWithMiddleware(mdl("first"), mdl("second")))
	s.Get("/plugins/:name", func(ctx *Context) {
		order = append(order, "handler")
		name, err := ctx.PathValue("name").String()
		require.NoError(t, err)
		_ = ctx.RespJSONOK(map[string]string{
			"name":   name,
			"status": ctx.QueryValue("status").StringOr("all"),
			"route":  ctx.MatchRoute,
		})
	})

	testCases := []struct {
		name       string
		path       string
		wantCode   int
		wantBody   string
		wantHeader string
	}{
		{
			name:       "matched",
			path:       "/plugins/Spotify?status=enabled",
			wantCode:   http.StatusOK,
			wantBody:   `{"name":"Spotify","status":"enabled","route":"/plugins/:name"}`,
			wantHeader: "application/json; charset=utf-8",
		},
		{
			name:       "default query",
			path:       "/plugins/Spotify",
			wantCode:   http.StatusOK,
			wantBody:   `{"name":"Spotify","status":"all","route":"/plugins/:name"}`,
			wantHeader: "application/json; charset=utf-8",
		},
		{
			name:     "not found",
			path:     "/unknown",
			wantCode: http.StatusNotFound,
			wantBody: "NOT FOUND",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order = nil
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			recorder := httptest.NewRecorder()
			s.ServeHTTP(recorder, req)
			assert.Equal(t, tc.wantCode, recorder.Code)
			if tc.wantHeader != "" {
				assert.JSONEq(t, tc.wantBody, recorder.Body.String())
				assert.Equal(t, tc.wantHeader, recorder.Header().Get("Content-Type"))
			} else {
				assert.Equal(t, tc.wantBody, recorder.Body.String())
			}
		})
	}

	order = nil
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plugins/a", nil))
	assert.Equal(t, []string{"first before", "second before", "handler", "second after", "first after"}, order)
}

func TestContext_BindJSON(t *testing.T) {
	testCases := []struct {
		name    string
		body    []byte
		wantErr bool
		wantVal map[string]any
	}{
		{
			name:    "number kept as json.Number",
			body:    []byte(`{"volume": 80, "theme": "dark"}`),
			wantVal: map[string]any{"volume": json.Number("80"), "theme": "dark"},
		},
		{
			name:    "broken",
			body:    []byte(`{`),
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := &Context{Req: httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(tc.body))}
			var val map[string]any
			err := ctx.BindJSON(&val)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantVal, val)
		})
	}
}

func TestContext_Values(t *testing.T) {
	ctx := &Context{
		Req:        httptest.NewRequest(http.MethodGet, "/?page=3&empty=", nil),
		PathParams: map[string]string{"id": "12"},
	}
	page, err := ctx.QueryValue("page").AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)

	val, err := ctx.QueryValue("empty").String()
	require.NoError(t, err)
	assert.Equal(t, "", val)

	_, err = ctx.QueryValue("missing").String()
	assert.Equal(t, errKeyNotFound, err)

	id, err := ctx.PathValue("id").AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = ctx.PathValue("name").AsInt64()
	assert.Equal(t, errKeyNotFound, err)
}
