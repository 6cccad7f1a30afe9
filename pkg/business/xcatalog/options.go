package xcatalog

import (
	"time"

	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xmetrics"
)

// Option 配置 Catalog。
type Option func(*options)

type options struct {
	logger   xlog.Logger
	observer xmetrics.Observer
	now      func() time.Time

	retryAttempts uint
	retryDelay    time.Duration
	loadTimeout   time.Duration

	breakerFailures uint32
	breakerTimeout  time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:          xlog.Discard(),
		observer:        xmetrics.NoopObserver{},
		now:             time.Now,
		retryAttempts:   3,
		retryDelay:      50 * time.Millisecond,
		loadTimeout:     5 * time.Second,
		breakerFailures: 5,
		breakerTimeout:  30 * time.Second,
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器。nil 被忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithNow 注入时间源，用于确定"即将开始"的起点与推荐打分。nil 被忽略。
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRetry 设置存储调用的总尝试次数与基础退避。attempts 为 0 时保持默认。
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.retryAttempts = attempts
		}
		if delay >= 0 {
			o.retryDelay = delay
		}
	}
}

// WithLoadTimeout 设置合并加载的独立超时。
//
// 合并加载脱离首个调用方的取消链，由此超时兜底。非正数保持默认。
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

// WithBreaker 设置熔断参数：连续失败 failures 次后熔断，timeout 后进入半开。
// 零值保持默认。
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(o *options) {
		if failures > 0 {
			o.breakerFailures = failures
		}
		if timeout > 0 {
			o.breakerTimeout = timeout
		}
	}
}
