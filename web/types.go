package web

import "net/http"

type HandleFunc func(ctx *Context)

// Middleware 洋葱模型，next 之前是请求阶段，之后是响应阶段
type Middleware func(next HandleFunc) HandleFunc

// 确保 HTTPServer 一定实现了 Server
var _ Server = &HTTPServer{}

type Server interface {
	http.Handler
	Start(addr string) error
	// addRoute 注册路由，path 支持静态、:param 和 * 三种段
	addRoute(method string, path string, handleFunc HandleFunc)
}
