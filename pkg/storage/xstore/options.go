package xstore

import "time"

// DefaultKeyPrefix 是 Redis key 的默认前缀。
const DefaultKeyPrefix = "eventkit:"

// Option 配置 Redis 存储。
type Option func(*options)

type options struct {
	prefix string
	now    func() time.Time
	newID  func() string
}

// WithKeyPrefix 设置 Redis key 前缀，空字符串表示不加前缀。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithNow 注入时间源，用于生成 CreatedAt/UpdatedAt。nil 被忽略。
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator 注入活动 ID 生成器，默认生成随机 UUID。nil 被忽略。
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
