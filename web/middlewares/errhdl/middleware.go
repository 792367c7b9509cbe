package errhdl

import "pluginstate/web"

// MiddlewareBuilder 按状态码替换响应体，只能返回固定的内容
type MiddlewareBuilder struct {
	resp map[int][]byte
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		resp: map[int][]byte{},
	}
}

func (m *MiddlewareBuilder) AddCode(status int, data []byte) *MiddlewareBuilder {
	m.resp[status] = data
	return m
}

func (m MiddlewareBuilder) Build() web.Middleware {
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			next(ctx)
			resp, ok := m.resp[ctx.RespStatusCode]
			// 已经有 JSON 响应的不覆盖
			if ok && ctx.Resp.Header().Get("Content-Type") == "" {
				ctx.RespData = resp
			}
		}
	}
}
