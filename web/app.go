package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

type AppOption func(*App)

// ShutdownCallback 超时由 ctx 控制，回调自己要处理 ctx 的超时
type ShutdownCallback func(ctx context.Context)

func AppWithShutdownCallbacks(cbs ...ShutdownCallback) AppOption {
	return func(app *App) {
		app.cbs = cbs
	}
}

func AppWithShutdownTimeout(timeout time.Duration) AppOption {
	return func(app *App) {
		app.shutdownTimeout = timeout
	}
}

func AppWithWaitTimeout(timeout time.Duration) AppOption {
	return func(app *App) {
		app.waitTime = timeout
	}
}

func AppWithCBTimeout(timeout time.Duration) AppOption {
	return func(app *App) {
		app.cbTimeout = timeout
	}
}

func AppWithLogger(l logrus.FieldLogger) AppOption {
	return func(app *App) {
		app.logger = l
	}
}

// App 管理多个 server 的启动和优雅退出
type App struct {
	servers []*GracefulServer

	// 整个优雅退出的超时时间，超过了就强制退出
	shutdownTimeout time.Duration
	// 等待已有请求处理完的时间
	waitTime time.Duration
	// 单个回调的超时时间
	cbTimeout time.Duration

	cbs    []ShutdownCallback
	logger logrus.FieldLogger
}

func NewApp(servers []*GracefulServer, opts ...AppOption) *App {
	app := &App{
		servers:         servers,
		shutdownTimeout: time.Second * 30,
		waitTime:        time.Second * 10,
		cbTimeout:       time.Second * 3,
		logger:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Start 启动所有 server，不阻塞
func (app *App) Start() {
	for _, s := range app.servers {
		srv := s
		go func() {
			err := srv.Start()
			if errors.Is(err, http.ErrServerClosed) {
				app.logger.WithField("server", srv.name).Info("web: 服务器已关闭")
				return
			}
			if err != nil {
				app.logger.WithError(err).WithField("server", srv.name).Error("web: 服务器异常退出")
			}
		}()
	}
}

// StartAndServe 启动之后阻塞，收到退出信号开始优雅退出
// 退出过程中再收到一次信号或者超时都会强制退出
func (app *App) StartAndServe() {
	app.Start()
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	go func() {
		select {
		case <-sig:
			app.logger.Warn("web: 再次接收到信号, 强制退出")
			os.Exit(1)
		case <-time.After(app.shutdownTimeout):
			app.logger.Warn("web: 优雅退出超时, 强制退出")
			os.Exit(1)
		}
	}()
	app.Shutdown()
}

// Shutdown 拒绝新请求，等待已有请求，执行回调
func (app *App) Shutdown() {
	app.logger.Info("web: 开始关闭应用, 停止接收新请求")
	for _, srv := range app.servers {
		srv.rejectReq()
	}

	app.logger.Info("web: 等待正在执行的请求完结")
	ctx, cancel := context.WithTimeout(context.Background(), app.waitTime)
	defer cancel()
	var wg sync.WaitGroup
	for _, srv := range app.servers {
		wg.Add(1)
		go func(srv *GracefulServer) {
			defer wg.Done()
			if err := srv.stop(ctx); err != nil {
				app.logger.WithError(err).WithField("server", srv.name).Warn("web: 关闭服务失败")
			}
		}(srv)
	}
	wg.Wait()

	app.logger.Info("web: 开始执行回调")
	wg.Add(len(app.cbs))
	for _, cb := range app.cbs {
		go func(cb ShutdownCallback) {
			defer wg.Done()
			cbCtx, cancel := context.WithTimeout(context.Background(), app.cbTimeout)
			defer cancel()
			cb(cbCtx)
		}(cb)
	}
	wg.Wait()
	app.logger.Info("web: 应用关闭")
}

// GracefulServer 包装 http.Server，关闭的时候先拒绝新请求
type GracefulServer struct {
	srv    *http.Server
	name   string
	reject atomic.Bool
}

func NewGracefulServer(name string, addr string, handler http.Handler) *GracefulServer {
	s := &GracefulServer{name: name}
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.wrap(handler),
	}
	return s
}

func (s *GracefulServer) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.reject.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("服务已关闭"))
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func (s *GracefulServer) Name() string {
	return s.name
}

func (s *GracefulServer) Start() error {
	return s.srv.ListenAndServe()
}

func (s *GracefulServer) rejectReq() {
	s.reject.Store(true)
}

func (s *GracefulServer) stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
