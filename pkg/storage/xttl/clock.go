package xttl

import "time"

// Clock 时间源。测试中注入可控时钟以精确驱动过期边界。
type Clock interface {
	Now() time.Time
}

// ClockFunc 将函数适配为 Clock。
type ClockFunc func() time.Time

// Now 实现 Clock 接口。
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock 返回基于 time.Now 的时钟。
//
// time.Now 携带单调时钟读数，墙钟回拨不会让条目"复活"。
func SystemClock() Clock { return ClockFunc(time.Now) }
