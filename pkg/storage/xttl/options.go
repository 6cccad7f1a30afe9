package xttl

import "time"

// RemovalReason 描述条目被移除的原因。
type RemovalReason int

const (
	// ReasonExpired 条目过期，由 Get/Has 惰性淘汰或 Cleanup 回收。
	ReasonExpired RemovalReason = iota + 1
	// ReasonDeleted 条目被 Delete 显式删除。
	ReasonDeleted
	// ReasonInvalidated 条目被 InvalidatePattern 按模式失效。
	ReasonInvalidated
	// ReasonCleared 条目随 Clear 一并清空。
	ReasonCleared
	// ReasonCapacity 缓存达到容量上限，最近最少使用的条目被淘汰。
	ReasonCapacity
)

// String 返回原因的小写名称，便于日志输出。
func (r RemovalReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDeleted:
		return "deleted"
	case ReasonInvalidated:
		return "invalidated"
	case ReasonCleared:
		return "cleared"
	case ReasonCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Option 定义缓存的可选配置函数类型。
type Option[V any] func(*options[V])

type options[V any] struct {
	defaultTTL time.Duration
	maxEntries int
	clock      Clock
	onRemoved  func(key string, value V, reason RemovalReason)
}

func defaultOptions[V any]() *options[V] {
	return &options[V]{
		defaultTTL: DefaultTTL,
		clock:      SystemClock(),
	}
}

func (o *options[V]) validate() error {
	if o.defaultTTL <= 0 {
		return ErrInvalidTTL
	}
	if o.maxEntries < 0 {
		return ErrInvalidMaxEntries
	}
	if o.clock == nil {
		return ErrNilClock
	}
	return nil
}

// WithDefaultTTL 设置 Set 使用的默认存活时长，必须为正数。
// 默认 DefaultTTL（5 分钟）。
func WithDefaultTTL[V any](d time.Duration) Option[V] {
	return func(o *options[V]) {
		o.defaultTTL = d
	}
}

// WithMaxEntries 设置容量上限。0 表示不限（默认），负数在 New 时报错。
func WithMaxEntries[V any](n int) Option[V] {
	return func(o *options[V]) {
		o.maxEntries = n
	}
}

// WithClock 注入时间源，主要用于测试。
func WithClock[V any](clock Clock) Option[V] {
	return func(o *options[V]) {
		o.clock = clock
	}
}

// WithOnRemoved 设置条目被移除时的回调。
//
// 回调在缓存锁释放后同步调用，可以安全地回调缓存自身的方法。
// 覆盖写入（Set 已存在的键）不触发回调。
func WithOnRemoved[V any](fn func(key string, value V, reason RemovalReason)) Option[V] {
	return func(o *options[V]) {
		o.onRemoved = fn
	}
}
