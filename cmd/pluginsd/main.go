package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"pluginstate/api"
	"pluginstate/mutex"
	mutexotel "pluginstate/mutex/middlewares/opentelemetry"
	mutexprom "pluginstate/mutex/middlewares/prometheus"
	"pluginstate/mutex/middlewares/slowlog"
	"pluginstate/plugins"
	"pluginstate/store"
	"pluginstate/web"
	"pluginstate/web/middlewares/accesslog"
	"pluginstate/web/middlewares/errhdl"
	webotel "pluginstate/web/middlewares/opentelemetry"
	webprom "pluginstate/web/middlewares/prometheus"
	"pluginstate/web/middlewares/recover"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径，toml 格式")
	flag.Parse()

	cfg, err := LoadConfig(*cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("pluginsd: 加载配置失败")
	}
	if err = setupLogger(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("pluginsd: 初始化日志失败")
	}
	app, err := newApp(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("pluginsd: 启动失败")
	}
	app.StartAndServe()
}

func setupLogger(cfg LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetOutput(os.Stdout)
	return nil
}

// closers 启动过程中拿到的资源，启动失败的时候倒序释放
type closers []func(ctx context.Context) error

func (c *closers) add(fn func(ctx context.Context) error) {
	*c = append(*c, fn)
}

func (c closers) close(ctx context.Context, logger logrus.FieldLogger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			logger.WithError(err).Warn("pluginsd: 释放资源失败")
		}
	}
}

func newApp(ctx context.Context, cfg Config) (app *web.App, err error) {
	logger := logrus.StandardLogger()

	shutdownTracing, err := initTracing(cfg.Tracing)
	if err != nil {
		return nil, err
	}
	var cs closers
	cs.add(shutdownTracing)
	defer func() {
		if err != nil {
			cs.close(ctx, logger)
		}
	}()

	data, err := os.ReadFile(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("pluginsd: 读取插件清单失败, %w", err)
	}
	defs, err := plugins.ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	b, err := newBackend(ctx, cfg.Store, cfg.Lock)
	if err != nil {
		return nil, err
	}
	cs.add(func(ctx context.Context) error {
		return b.close()
	})
	codec, err := newCodec(cfg.Store.Codec)
	if err != nil {
		return nil, err
	}

	lock := mutex.New(
		mutex.LockWithName(cfg.Store.Name),
		mutex.LockWithMiddlewares(
			mutexprom.MiddlewareBuilder{
				Namespace: cfg.Metrics.Namespace,
				Subsystem: "mutex",
				Name:      "section_ms",
				Help:      "排队和持有锁的时间",
			}.Build(),
			mutexotel.MiddlewareBuilder{}.Build(),
			slowlog.NewMiddlewareBuilder(cfg.Lock.SlowThreshold).Logger(logger).Build(),
		),
	)
	opts := []store.Option{
		store.WithBackend(b.cache),
		store.WithCodec(codec),
		store.WithExpiration(cfg.Store.Expiration),
		store.WithLock(lock),
		store.WithLogger(logger),
	}
	if b.remote != nil {
		opts = append(opts, store.WithRemoteLock(b.remote))
	}
	st := store.New[plugins.Settings](cfg.Store.Name, plugins.Settings{}, opts...)
	if err = st.Load(ctx); err != nil {
		return nil, err
	}
	unsubscribe := st.Subscribe(func(c store.Change[plugins.Settings]) {
		logger.WithField("version", c.Version).Info("pluginsd: 设置已更新")
	})

	mgr, err := plugins.NewManager(defs, st, plugins.ManagerWithLogger(logger))
	if err != nil {
		return nil, err
	}

	server := web.NewHTTPServer(
		web.ServerWithLogger(logger),
		web.ServerWithMiddleware(
			recover.MiddlewareBuilder{
				StatusCode: http.StatusInternalServerError,
				Data:       []byte(`{"error":"internal error"}`),
				Logger:     logger,
			}.Build(),
			accesslog.NewMiddlewareBuilder().Logger(logger).Build(),
			webprom.MiddlewareBuilder{
				Namespace: cfg.Metrics.Namespace,
				Subsystem: "web",
				Name:      "http_response_ms",
				Help:      "HTTP 响应时间",
			}.Build(),
			webotel.MiddlewareBuilder{}.Build(),
			errhdl.NewMiddlewareBuilder().
				AddCode(http.StatusNotFound, []byte(`{"error":"not found"}`)).
				Build(),
		),
	)
	api.NewHandler(mgr, api.WithLogger(logger)).Register(server)

	metrics := http.NewServeMux()
	metrics.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	return web.NewApp(
		[]*web.GracefulServer{
			web.NewGracefulServer("api", cfg.Addr, server),
			web.NewGracefulServer("metrics", cfg.Metrics.Addr, metrics),
		},
		web.AppWithLogger(logger),
		web.AppWithShutdownTimeout(cfg.Shutdown.Timeout),
		web.AppWithWaitTimeout(cfg.Shutdown.Wait),
		web.AppWithCBTimeout(cfg.Shutdown.Callback),
		web.AppWithShutdownCallbacks(
			func(ctx context.Context) {
				unsubscribe()
				st.Close()
				if er := b.close(); er != nil {
					logger.WithError(er).Warn("pluginsd: 关闭存储失败")
				}
			},
			func(ctx context.Context) {
				if er := shutdownTracing(ctx); er != nil {
					logger.WithError(er).Warn("pluginsd: 关闭 tracing 失败")
				}
			},
		),
	), nil
}
