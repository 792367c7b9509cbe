package web

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_AddRoute(t *testing.T) {
	testRoutes := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/"},
		{method: http.MethodGet, path: "/plugins"},
		{method: http.MethodGet, path: "/plugins/:name"},
		{method: http.MethodGet, path: "/plugins/:name/dependents"},
		{method: http.MethodGet, path: "/static/*"},
		{method: http.MethodPost, path: "/plugins/:name/enable"},
		{method: http.MethodPost, path: "/plugins/seen"},
	}
	var mockHandler HandleFunc = func(ctx *Context) {}
	r := newRouter()
	for _, route := range testRoutes {
		r.addRoute(route.method, route.path, mockHandler)
	}

	// handler 不可比，不能直接用 assert.Equal
	wantRouter := &router{
		trees: map[string]*node{
			http.MethodGet: {
				path:    "/",
				handler: mockHandler,
				children: map[string]*node{
					"plugins": {
						path:    "plugins",
						handler: mockHandler,
						paramChild: &node{
							path:    ":name",
							handler: mockHandler,
							children: map[string]*node{
								"dependents": {path: "dependents", handler: mockHandler},
							},
						},
					},
					"static": {
						path:      "static",
						starChild: &node{path: "*", handler: mockHandler},
					},
				},
			},
			http.MethodPost: {
				path: "/",
				children: map[string]*node{
					"plugins": {
						path: "plugins",
						children: map[string]*node{
							"seen": {path: "seen", handler: mockHandler},
						},
						paramChild: &node{
							path: ":name",
							children: map[string]*node{
								"enable": {path: "enable", handler: mockHandler},
							},
						},
					},
				},
			},
		},
	}
	msg, ok := wantRouter.equal(&r)
	assert.True(t, ok, msg)

	r = newRouter()
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "", mockHandler)
	}, "web: 路径不能为空")
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/a/b/c/", mockHandler)
	}, "web: 路径不能以 / 结尾")
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "abc", mockHandler)
	}, "web: 路径必须以 / 开头")
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/a//b", mockHandler)
	}, "web: 非法路由")

	r = newRouter()
	r.addRoute(http.MethodGet, "/", mockHandler)
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/", mockHandler)
	}, "web: 路由冲突")

	r = newRouter()
	r.addRoute(http.MethodGet, "/a/*", mockHandler)
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/a/:id", mockHandler)
	}, "web: 不允许同时注册路径参数和通配符匹配")
	r.addRoute(http.MethodGet, "/b/:id", mockHandler)
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/b/*", mockHandler)
	}, "web: 不允许同时注册路径参数和通配符匹配")
	assert.Panicsf(t, func() {
		r.addRoute(http.MethodGet, "/b/:name/detail", mockHandler)
	}, "web: 路由冲突")
}

// equal 返回的 string 是帮助排查问题的错误信息
func (r *router) equal(y *router) (string, bool) {
	if len(r.trees) != len(y.trees) {
		return "路由树数量不相等", false
	}
	for k, v := range r.trees {
		dst, ok := y.trees[k]
		if !ok {
			return fmt.Sprintf("找不到 http method %s", k), false
		}
		if msg, equal := v.equal(dst); !equal {
			return msg, false
		}
	}
	return "", true
}

func (n *node) equal(y *node) (string, bool) {
	if y == nil {
		return fmt.Sprintf("节点 %s 不存在", n.path), false
	}
	if n.path != y.path {
		return fmt.Sprintf("节点路径不匹配, %s != %s", n.path, y.path), false
	}
	if len(n.children) != len(y.children) {
		return fmt.Sprintf("节点 %s 子节点数量不相等", n.path), false
	}
	if (n.starChild == nil) != (y.starChild == nil) || (n.paramChild == nil) != (y.paramChild == nil) {
		return fmt.Sprintf("节点 %s 的特殊子节点不一致", n.path), false
	}
	if n.starChild != nil {
		if msg, ok := n.starChild.equal(y.starChild); !ok {
			return msg, ok
		}
	}
	if n.paramChild != nil {
		if msg, ok := n.paramChild.equal(y.paramChild); !ok {
			return msg, ok
		}
	}
	// 比较 handler 需要用反射
	if reflect.ValueOf(n.handler) != reflect.ValueOf(y.handler) {
		return fmt.Sprintf("节点 %s 的 handler 不相等", n.path), false
	}
	for path, c := range n.children {
		dst, ok := y.children[path]
		if !ok {
			return fmt.Sprintf("子节点 %s 不存在", path), false
		}
		if msg, ok := c.equal(dst); !ok {
			return msg, false
		}
	}
	return "", true
}

func TestRouter_findRoute(t *testing.T) {
	testRoutes := []struct {
		method string
		path   string
	}{
		{method: http.MethodDelete, path: "/"},
		{method: http.MethodGet, path: "/plugins"},
		{method: http.MethodGet, path: "/plugins/:name"},
		{method: http.MethodGet, path: "/plugins/:name/dependents"},
		{method: http.MethodPost, path: "/plugins/seen"},
		{method: http.MethodPost, path: "/plugins/:name/enable"},
		{method: http.MethodGet, path: "/static/*"},
	}
	var mockHandler HandleFunc = func(ctx *Context) {}
	r := newRouter()
	for _, route := range testRoutes {
		r.addRoute(route.method, route.path, mockHandler)
	}

	testCases := []struct {
		name      string
		method    string
		path      string
		wantFound bool
		wantRoute string
		wantNil   bool
		params    map[string]string
	}{
		{
			name:   "method not found",
			method: http.MethodOptions,
			path:   "/plugins",
		},
		{
			name:      "root",
			method:    http.MethodDelete,
			path:      "/",
			wantFound: true,
		},
		{
			name:      "static",
			method:    http.MethodGet,
			path:      "/plugins",
			wantFound: true,
			wantRoute: "/plugins",
		},
		{
			name:      "param",
			method:    http.MethodGet,
			path:      "/plugins/Spotify",
			wantFound: true,
			wantRoute: "/plugins/:name",
			params:    map[string]string{"name": "Spotify"},
		},
		{
			name:      "param then static",
			method:    http.MethodGet,
			path:      "/plugins/Spotify/dependents",
			wantFound: true,
			wantRoute: "/plugins/:name/dependents",
			params:    map[string]string{"name": "Spotify"},
		},
		{
			name:      "static before param",
			method:    http.MethodPost,
			path:      "/plugins/seen",
			wantFound: true,
			wantRoute: "/plugins/seen",
		},
		{
			name:      "matched without handler",
			method:    http.MethodPost,
			path:      "/plugins/Spotify",
			wantFound: true,
			wantNil:   true,
			params:    map[string]string{"name": "Spotify"},
		},
		{
			name:      "star",
			method:    http.MethodGet,
			path:      "/static/app.js",
			wantFound: true,
			wantRoute: "/static/*",
		},
		{
			name:   "not found",
			method: http.MethodGet,
			path:   "/plugins/Spotify/unknown",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, found := r.findRoute(tc.method, tc.path)
			assert.Equal(t, tc.wantFound, found)
			if !found {
				return
			}
			assert.Equal(t, tc.params, info.pathParams)
			assert.Equal(t, tc.wantNil, info.n.handler == nil)
			if tc.wantRoute != "" {
				assert.Equal(t, tc.wantRoute, info.n.route)
			}
		})
	}
}
