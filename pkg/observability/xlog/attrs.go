package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key，保持各组件日志字段一致。
const (
	KeyError     = "error"
	KeyStack     = "stack"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyUserID    = "user_id"
	KeyEventID   = "event_id"
	KeyCacheKey  = "cache_key"
	KeyReason    = "reason"
)

// Err 创建错误属性
//
// err 为 nil 时返回空属性（会被 slog 忽略）。
//
//	if err != nil {
//	    logger.Error(ctx, "load event failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出人类可读格式（如 "1.5s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Count 创建计数属性
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// UserID 创建用户 ID 属性
func UserID(id string) slog.Attr {
	return slog.String(KeyUserID, id)
}

// EventID 创建事件 ID 属性
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// CacheKey 创建缓存 key 属性
func CacheKey(key string) slog.Attr {
	return slog.String(KeyCacheKey, key)
}

// Reason 创建原因属性（如缓存条目的移除原因）
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}
