package xcatalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/omeyang/eventkit/pkg/business/xevent"
	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xmetrics"
	"github.com/omeyang/eventkit/pkg/storage/xstore"
	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

const component = "xcatalog"

// Catalog 是带旁路缓存的活动目录，可被多个 goroutine 并发使用。
type Catalog struct {
	store   xstore.Store
	cache   *xttl.Cache[any]
	opts    *options
	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker[any]
}

// New 创建 Catalog。
func New(store xstore.Store, cache *xttl.Cache[any], opts ...Option) (*Catalog, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if cache == nil {
		return nil, ErrNilCache
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	c := &Catalog{store: store, cache: cache, opts: o}
	c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "xstore",
		Timeout: o.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.breakerFailures
		},
		// 业务层面的否定结果不代表存储故障。
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			o.logger.Warn(context.Background(), "store breaker state changed",
				xlog.Component(component),
				xlog.Reason(from.String()+" -> "+to.String()),
			)
		},
	})
	return c, nil
}

// Cache 返回底层缓存。
func (c *Catalog) Cache() *xttl.Cache[any] {
	return c.cache
}

// CacheStats 返回缓存统计快照。
func (c *Catalog) CacheStats() xttl.Stats {
	return c.cache.Stats()
}

// isPermanent 报告错误是否为不应重试的业务错误。
func isPermanent(err error) bool {
	return errors.Is(err, xstore.ErrNotFound) ||
		errors.Is(err, xstore.ErrInvalidEvent) ||
		errors.Is(err, xstore.ErrInvalidRSVP) ||
		errors.Is(err, xstore.ErrInvalidProfile) ||
		errors.Is(err, xstore.ErrAlreadyExists) ||
		errors.Is(err, xevent.ErrInvalidEvent) ||
		errors.Is(err, xevent.ErrInvalidStatus) ||
		errors.Is(err, xstore.ErrCorruptRecord)
}

func retryable(err error) bool {
	return !isPermanent(err) &&
		!errors.Is(err, ErrUnavailable) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// call 执行一次存储调用：熔断保护 + 重试。
func (c *Catalog) call(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	return retry.NewWithData[any](
		retry.Context(ctx),
		retry.Attempts(c.opts.retryAttempts),
		retry.Delay(c.opts.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	).Do(func() (any, error) {
		v, err := c.breaker.Execute(func() (any, error) { return fn(ctx) })
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return v, err
	})
}

// observe 开始一次观测，返回的 end 记录结果。
func (c *Catalog) observe(ctx context.Context, op string, attrs ...xmetrics.Attr) (context.Context, func(error)) {
	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: op,
		Kind:      xmetrics.KindInternal,
		Attrs:     attrs,
	})
	return ctx, func(err error) { span.End(xmetrics.Result{Err: err}) }
}

// cached 实现读路径：查缓存，未命中时合并加载并写回缓存。
func cached[T any](ctx context.Context, c *Catalog, op, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (result T, err error) {
	ctx, end := c.observe(ctx, op, xmetrics.String("cache_key", key))
	defer func() { end(err) }()

	if v, ok := xttl.GetAs[T](c.cache, key); ok {
		c.opts.logger.Debug(ctx, "cache hit", xlog.Operation(op), xlog.CacheKey(key))
		return v, nil
	}
	c.opts.logger.Debug(ctx, "cache miss", xlog.Operation(op), xlog.CacheKey(key))

	ch := c.group.DoChan(key, func() (any, error) {
		// 上一轮合并加载可能刚刚写回，再次检查缓存。
		if v, ok := xttl.GetAs[T](c.cache, key); ok {
			return v, nil
		}
		// 加载脱离首个调用方的取消链，由独立超时兜底，结果供所有等待者共享。
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.loadTimeout)
		defer cancel()

		start := time.Now()
		v, err := fetch(loadCtx)
		if err != nil {
			return nil, err
		}
		c.cache.SetWithTTL(key, v, ttl)
		c.opts.logger.Debug(ctx, "cache filled",
			xlog.Operation(op), xlog.CacheKey(key), xlog.Duration(time.Since(start)))
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %T for key %s", ErrUnexpectedType, res.Val, key)
		}
		return v, nil
	}
}

// guarded 将存储读取包装为经熔断与重试保护的加载函数。
func guarded[T any](c *Catalog, fetch func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var zero T
		v, err := c.call(ctx, func(ctx context.Context) (any, error) { return fetch(ctx) })
		if err != nil {
			return zero, err
		}
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %T", ErrUnexpectedType, v)
		}
		return t, nil
	}
}

// invalidate 删除精确键与前缀模式，记录删除数量。
func (c *Catalog) invalidate(ctx context.Context, op string, keys []string, patterns ...string) {
	n := 0
	for _, k := range keys {
		if c.cache.Delete(k) {
			n++
		}
	}
	for _, p := range patterns {
		n += c.cache.InvalidatePattern(p)
	}
	c.opts.logger.Debug(ctx, "cache invalidated", xlog.Operation(op), xlog.Count(int64(n)))
}
