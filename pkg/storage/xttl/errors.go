package xttl

import "errors"

var (
	// ErrInvalidTTL 表示默认 TTL 不是正数。
	ErrInvalidTTL = errors.New("xttl: default ttl must be positive")

	// ErrInvalidMaxEntries 表示容量上限为负数。
	ErrInvalidMaxEntries = errors.New("xttl: max entries must not be negative")

	// ErrNilClock 表示注入的时钟为 nil。
	ErrNilClock = errors.New("xttl: clock must not be nil")

	// ErrNilSweeper 表示 Janitor 的清理目标为 nil。
	ErrNilSweeper = errors.New("xttl: sweeper must not be nil")

	// ErrInvalidInterval 表示 Janitor 的清理间隔不是正数。
	ErrInvalidInterval = errors.New("xttl: sweep interval must be positive")
)
