package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/eventkit/pkg/observability/xlog"
)

// Group 基于 errgroup + context 管理多个服务的并发运行和协调关闭。
//
// 当任一服务返回错误或 context 被取消时，所有服务都会收到取消信号。
// Go、GoWithName、Cancel 可并发调用；Wait 应仅调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建新的 Group，并返回派生的 context。
// 任一 goroutine 返回错误时，返回的 context 会被取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动一个 goroutine 执行 fn。fn 应监听 ctx.Done() 以响应取消。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，但会在日志中记录服务名称及其退出原因。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待所有 goroutine 完成并返回第一个非 nil 错误。
//
// 普通的 context 取消返回 nil；Cancel(cause) 设置的显式原因
// 即使所有服务都返回 nil 也会被返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug(context.Background(), "all services stopped", slog.String("group", g.opts.name))

	if errors.Is(err, context.Canceled) {
		// causeCtx 未被取消时，context.Canceled 来自服务内部，原样返回。
		if g.causeCtx.Err() == nil {
			return err
		}
		return g.explicitCause()
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 主动取消所有 goroutine，cause 将作为 Wait 的返回值。
//
// cause 不应包装 context.Canceled，否则 Wait 会将其视为普通取消而过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Service 定义可管理的长期运行服务。
type Service interface {
	// Run 阻塞直到 ctx 被取消或发生错误。
	Run(ctx context.Context) error
}

// ServiceFunc 将函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service 接口。
func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// runGroup 是 Run 系列函数的共享实现：按需注册信号监听，再注册业务服务。
func runGroup(ctx context.Context, opts []Option, setup func(g *Group)) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		// 空切片时 signal.Notify 会订阅所有信号，这里回退到默认列表。
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			testc := testSigChan(ctx)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, signals...)
			defer signal.Stop(sigCh)

			var sig os.Signal
			select {
			case sig = <-testc:
			case sig = <-sigCh:
			case <-ctx.Done():
				return ctx.Err()
			}

			g.opts.logger.Info(ctx, "received signal",
				slog.String("group", g.opts.name),
				slog.String("signal", sig.String()),
			)
			g.cancel(&SignalError{Signal: sig})
			return nil
		})
	}

	setup(g)
	return g.Wait()
}

// Run 监听退出信号并运行服务函数，直到信号到达或任一服务出错。
// 信号退出时返回 *SignalError。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			g.Go(svc)
		}
	})
}

// NamedService 绑定名称与 Service，供 RunServices 记录日志。
type NamedService struct {
	Name    string
	Service Service
}

// RunServices 运行多个具名 Service，监听信号并协调关闭。
func RunServices(ctx context.Context, opts []Option, services ...NamedService) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, ns := range services {
			if ns.Service == nil {
				g.Go(func(context.Context) error { return ErrNilService })
				continue
			}
			g.GoWithName(ns.Name, ns.Service.Run)
		}
	})
}
