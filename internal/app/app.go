package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/eventkit/pkg/business/xcatalog"
	"github.com/omeyang/eventkit/pkg/config/xconf"
	"github.com/omeyang/eventkit/pkg/lifecycle/xrun"
	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xmetrics"
	"github.com/omeyang/eventkit/pkg/observability/xrotate"
	"github.com/omeyang/eventkit/pkg/storage/xstore"
	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

// App 持有装配好的运行时组件。
type App struct {
	Config   Config
	Logger   xlog.LoggerWithLevel
	Observer xmetrics.Observer
	Redis    redis.UniversalClient
	Store    xstore.Store
	Cache    *xttl.Cache[any]
	Catalog  *xcatalog.Catalog
	Janitor  *xttl.Janitor

	closers []func() error
}

// Option 配置 App 的装配过程。
type Option func(*buildOptions)

type buildOptions struct {
	logger   xlog.LoggerWithLevel
	redis    redis.UniversalClient
	observer xmetrics.Observer
}

// WithLogger 使用已有的 Logger，跳过按配置构建。
func WithLogger(logger xlog.LoggerWithLevel) Option {
	return func(o *buildOptions) { o.logger = logger }
}

// WithRedisClient 使用已有的 Redis 客户端，App 不负责关闭它。
func WithRedisClient(client redis.UniversalClient) Option {
	return func(o *buildOptions) { o.redis = client }
}

// WithObserver 设置目录使用的观测器。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *buildOptions) { o.observer = observer }
}

// New 按配置装配全部组件。任一步失败时已创建的资源会被释放。
func New(cfg Config, opts ...Option) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &buildOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.Logger = o.logger; a.Logger == nil {
		logger, closeLog, err := BuildLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		a.Logger = logger
		a.closers = append(a.closers, closeLog)
	}

	if a.Redis = o.redis; a.Redis == nil {
		a.Redis = newRedisClient(cfg.Redis)
		a.closers = append(a.closers, a.Redis.Close)
	}

	if a.Store, err = xstore.NewRedis(a.Redis, xstore.WithKeyPrefix(cfg.Redis.KeyPrefix)); err != nil {
		return nil, err
	}

	cacheOpts := []xttl.Option[any]{
		xttl.WithDefaultTTL[any](cfg.Cache.DefaultTTL),
		xttl.WithMaxEntries[any](cfg.Cache.MaxEntries),
	}
	if cfg.Cache.MaxEntries > 0 {
		cacheLog := a.Logger.With(xlog.Component("xttl"))
		cacheOpts = append(cacheOpts, xttl.WithOnRemoved(func(key string, _ any, reason xttl.RemovalReason) {
			if reason == xttl.ReasonCapacity {
				cacheLog.Debug(context.Background(), "cache entry evicted", xlog.CacheKey(key), xlog.Reason(reason.String()))
			}
		}))
	}
	if a.Cache, err = xttl.New(cacheOpts...); err != nil {
		return nil, err
	}

	if a.Observer, err = newObserver(cfg.Metrics, o.observer); err != nil {
		return nil, err
	}

	if a.Catalog, err = xcatalog.New(a.Store, a.Cache,
		xcatalog.WithLogger(a.Logger.With(xlog.Component("xcatalog"))),
		xcatalog.WithObserver(a.Observer),
		xcatalog.WithRetry(cfg.Catalog.RetryAttempts, cfg.Catalog.RetryDelay),
		xcatalog.WithLoadTimeout(cfg.Catalog.LoadTimeout),
		xcatalog.WithBreaker(cfg.Catalog.BreakerFailures, cfg.Catalog.BreakerTimeout),
	); err != nil {
		return nil, err
	}

	if a.Janitor, err = xttl.NewJanitor(a.Cache,
		xttl.WithInterval(cfg.Cache.SweepInterval),
		xttl.WithJanitorLogger(a.Logger),
		xttl.WithJanitorName("catalog-cache"),
	); err != nil {
		return nil, err
	}
	return a, nil
}

// BuildLogger 按日志配置构建 Logger，返回的清理函数关闭轮转文件。
func BuildLogger(cfg LogConfig) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAddSource(cfg.AddSource).
		SetAttrs(slog.String("service", "eventkit"))
	if cfg.File != "" {
		b.SetRotation(cfg.File,
			xrotate.WithMaxSize(cfg.MaxSizeMB),
			xrotate.WithMaxBackups(cfg.MaxBackups),
			xrotate.WithMaxAge(cfg.MaxAgeDays),
			xrotate.WithCompress(cfg.Compress),
		)
	}
	return b.Build()
}

// newObserver 选择目录使用的观测器：显式注入优先，其次按配置创建 OTel 实现，否则为 noop。
func newObserver(cfg MetricsConfig, injected xmetrics.Observer) (xmetrics.Observer, error) {
	if injected != nil {
		return injected, nil
	}
	if !cfg.Enabled {
		return xmetrics.NoopObserver{}, nil
	}
	return xmetrics.NewOTelObserver(xmetrics.WithInstrumentationName(cfg.InstrumentationName))
}

func newRedisClient(cfg RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Close 按创建的逆序释放资源。
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve 运行后台服务直到 ctx 取消或收到退出信号：
//   - 缓存清理器
//   - 周期缓存统计日志（StatsInterval > 0 时）
//   - 配置文件监视（src 非 nil 且来自文件时），热更新日志级别
//
// 信号退出返回 nil。
func (a *App) Serve(ctx context.Context, src xconf.Config, opts ...xrun.Option) error {
	services := []xrun.NamedService{
		{Name: "janitor", Service: a.Janitor},
	}
	if iv := a.Config.Cache.StatsInterval; iv > 0 {
		services = append(services, xrun.NamedService{
			Name:    "cache-stats",
			Service: xrun.ServiceFunc(xrun.Ticker(iv, false, a.logStats)),
		})
	}
	if src != nil && src.Path() != "" {
		w, err := xconf.Watch(src, a.onConfigChange)
		if err != nil {
			return err
		}
		services = append(services, xrun.NamedService{Name: "config-watcher", Service: w})
	}

	a.Logger.Info(ctx, "eventkit serving",
		slog.Duration("sweep_interval", a.Janitor.Interval()),
		slog.Int("max_entries", a.Config.Cache.MaxEntries),
	)
	base := []xrun.Option{xrun.WithName("eventkit"), xrun.WithLogger(a.Logger)}
	err := xrun.RunServices(ctx, append(base, opts...), services...)
	if errors.Is(err, xrun.ErrSignal) {
		a.Logger.Info(context.Background(), "eventkit stopped", xlog.Reason(err.Error()))
		return nil
	}
	return err
}

func (a *App) logStats(ctx context.Context) error {
	s := a.Cache.Stats()
	a.Logger.Info(ctx, "cache stats",
		slog.Int("total", s.TotalEntries),
		slog.Int("valid", s.ValidEntries),
		slog.Int("expired", s.ExpiredEntries),
		slog.Float64("fresh_ratio", s.HitRate),
		slog.Uint64("hits", s.Hits),
		slog.Uint64("misses", s.Misses),
		slog.Float64("request_hit_rate", s.RequestHitRate()),
	)
	return nil
}

// onConfigChange 处理配置热更新。只有日志级别支持运行时生效，其余变更需重启。
func (a *App) onConfigChange(src xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		a.Logger.Warn(ctx, "config reload failed, keeping previous config", xlog.Err(err))
		return
	}
	cfg, err := Decode(src)
	if err != nil {
		a.Logger.Warn(ctx, "reloaded config is invalid, ignoring", xlog.Err(err))
		return
	}
	level, _ := xlog.ParseLevel(cfg.Log.Level) // Decode 已校验
	if level != a.Logger.GetLevel() {
		a.Logger.SetLevel(level)
		a.Logger.Info(ctx, "log level changed", slog.String("level", level.String()))
	}
}
