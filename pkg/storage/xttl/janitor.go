package xttl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/eventkit/pkg/observability/xlog"
)

// DefaultSweepInterval 是 Janitor 的默认清理间隔。
const DefaultSweepInterval = 10 * time.Minute

// Sweeper 是可被周期清理的目标，*Cache 实现了该接口。
type Sweeper interface {
	Cleanup() int
}

// JanitorOption 配置 Janitor。
type JanitorOption func(*Janitor)

// WithInterval 设置清理间隔，必须为正数。
func WithInterval(d time.Duration) JanitorOption {
	return func(j *Janitor) {
		j.interval = d
	}
}

// WithJanitorLogger 设置日志记录器。nil 被忽略。
func WithJanitorLogger(logger xlog.Logger) JanitorOption {
	return func(j *Janitor) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithJanitorName 设置日志中标识该 Janitor 的名称。
func WithJanitorName(name string) JanitorOption {
	return func(j *Janitor) {
		if name != "" {
			j.name = name
		}
	}
}

// Janitor 按固定间隔调用 Sweeper.Cleanup 回收过期条目。
//
// 生命周期由 Run 的 context 决定，不在后台自行启动 goroutine。
type Janitor struct {
	target   Sweeper
	interval time.Duration
	logger   xlog.Logger
	name     string
}

// NewJanitor 创建 Janitor。
func NewJanitor(target Sweeper, opts ...JanitorOption) (*Janitor, error) {
	if target == nil {
		return nil, ErrNilSweeper
	}
	j := &Janitor{
		target:   target,
		interval: DefaultSweepInterval,
		logger:   xlog.Discard(),
		name:     "xttl",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}
	if j.interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return j, nil
}

// Interval 返回清理间隔。
func (j *Janitor) Interval() time.Duration {
	return j.interval
}

// Sweep 立即执行一次清理，返回删除数量。
func (j *Janitor) Sweep(ctx context.Context) int {
	start := time.Now()
	n := j.target.Cleanup()
	j.logger.Debug(ctx, "cache sweep finished",
		xlog.Component(j.name),
		xlog.Count(int64(n)),
		xlog.Duration(time.Since(start)),
	)
	return n
}

// Run 阻塞运行周期清理，直到 ctx 被取消，取消时返回 nil。
//
// 设计决策: 调度交给 robfig/cron，清理任务套上 Recover 与 SkipIfStillRunning：
// 单次清理 panic 不会终止调度，上一轮未完成时跳过本轮而不是堆积。
// cron 内置的 @every 最小粒度为 1 秒，这里用自定义 Schedule 支持亚秒间隔。
func (j *Janitor) Run(ctx context.Context) error {
	logger := cronLogger{ctx: ctx, logger: j.logger, name: j.name}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(every(j.interval), cron.FuncJob(func() { j.Sweep(ctx) }))

	j.logger.Info(ctx, "cache janitor started",
		xlog.Component(j.name),
		slog.Duration("interval", j.interval),
	)
	c.Start()

	<-ctx.Done()
	// 等待正在执行的清理完成。
	<-c.Stop().Done()

	j.logger.Info(context.WithoutCancel(ctx), "cache janitor stopped", xlog.Component(j.name))
	return nil
}

// every 是固定间隔的 cron.Schedule，不做秒级取整。
type every time.Duration

// Next 实现 cron.Schedule 接口。
func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger 将 cron.Logger 适配到 xlog。
// cron 的 Info 日志（调度细节）降级为 Debug 输出。
type cronLogger struct {
	ctx    context.Context
	logger xlog.Logger
	name   string
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(l.ctx, "cron: "+msg, l.attrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	attrs := append(l.attrs(keysAndValues), xlog.Err(err))
	l.logger.Error(l.ctx, "cron: "+msg, attrs...)
}

func (l cronLogger) attrs(keysAndValues []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2+1)
	attrs = append(attrs, xlog.Component(l.name))
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return attrs
}
