package xrun

import (
	"os"

	"github.com/omeyang/eventkit/pkg/observability/xlog"
)

// Option 配置 Group 的选项函数。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Discard(),
		name:   "xrun",
	}
}

// WithLogger 设置记录生命周期事件的日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，用于日志中区分不同的 Group。
// 默认值为 "xrun"。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 设置 Run/RunServices 监听的信号列表。
//
// 默认监听 DefaultSignals()。空切片与 nil 等价。
func WithSignals(signals []os.Signal) Option {
	// 设计决策: 在创建时拷贝，避免调用方后续修改切片导致配置漂移。
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁用 Run/RunServices 的自动信号处理。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
