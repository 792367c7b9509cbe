package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"pluginstate/plugins"
	"pluginstate/web"
)

type Option func(h *Handler)

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// Handler 把插件设置暴露成 HTTP 接口
type Handler struct {
	mgr    *plugins.Manager
	logger logrus.FieldLogger
}

func NewHandler(mgr *plugins.Manager, opts ...Option) *Handler {
	h := &Handler{
		mgr:    mgr,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(server *web.HTTPServer) {
	server.Get("/plugins", h.List)
	server.Post("/plugins/seen", h.MarkSeen)
	server.Get("/plugins/:name", h.Get)
	server.Get("/plugins/:name/dependents", h.Dependents)
	server.Post("/plugins/:name/enable", h.Enable)
	server.Post("/plugins/:name/disable", h.Disable)
	server.Put("/plugins/:name/options", h.Configure)
}

type listResp struct {
	Plugins []plugins.View `json:"plugins"`
}

type dependentsResp struct {
	Name       string   `json:"name"`
	Dependents []string `json:"dependents"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (h *Handler) List(ctx *web.Context) {
	status, err := plugins.ParseStatus(ctx.QueryValue("status").StringOr(""))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	views := h.mgr.List(plugins.Filter{
		Status: status,
		Search: ctx.QueryValue("search").StringOr(""),
	})
	h.resp(ctx, http.StatusOK, listResp{Plugins: views})
}

func (h *Handler) Get(ctx *web.Context) {
	v, err := h.mgr.Get(ctx.PathValue("name").StringOr(""))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.resp(ctx, http.StatusOK, v)
}

func (h *Handler) Dependents(ctx *web.Context) {
	name := ctx.PathValue("name").StringOr("")
	deps, err := h.mgr.Dependents(name)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.resp(ctx, http.StatusOK, dependentsResp{Name: name, Dependents: deps})
}

func (h *Handler) Enable(ctx *web.Context) {
	res, err := h.mgr.Enable(ctx.Req.Context(), ctx.PathValue("name").StringOr(""))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.resp(ctx, http.StatusOK, res)
}

func (h *Handler) Disable(ctx *web.Context) {
	res, err := h.mgr.Disable(ctx.Req.Context(), ctx.PathValue("name").StringOr(""))
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.resp(ctx, http.StatusOK, res)
}

func (h *Handler) Configure(ctx *web.Context) {
	var opts map[string]any
	if err := ctx.BindJSON(&opts); err != nil {
		h.resp(ctx, http.StatusBadRequest, errorResp{Error: "请求格式不对: " + err.Error()})
		return
	}
	res, err := h.mgr.Configure(ctx.Req.Context(), ctx.PathValue("name").StringOr(""), opts)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	h.resp(ctx, http.StatusOK, res)
}

func (h *Handler) MarkSeen(ctx *web.Context) {
	if err := h.mgr.MarkSeen(ctx.Req.Context()); err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.RespStatusCode = http.StatusNoContent
}

// fail 业务错误映射成状态码，其余的都是 500
func (h *Handler) fail(ctx *web.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plugins.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, plugins.ErrRequired), errors.Is(err, plugins.ErrHasDependents):
		status = http.StatusConflict
	case errors.Is(err, plugins.ErrInvalidOption), errors.Is(err, plugins.ErrInvalidFilter):
		status = http.StatusBadRequest
	default:
		h.logger.WithError(err).WithField("path", ctx.Req.URL.Path).Error("api: 处理请求失败")
	}
	h.resp(ctx, status, errorResp{Error: err.Error()})
}

func (h *Handler) resp(ctx *web.Context, status int, val any) {
	if err := ctx.RespJSON(status, val); err != nil {
		h.logger.WithError(err).Error("api: 序列化响应失败")
		ctx.RespStatusCode = http.StatusInternalServerError
	}
}
