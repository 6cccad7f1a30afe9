package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// maxStackSize Stack 输出的最大堆栈字节数
const maxStackSize = 64 * 1024

type xlogger struct {
	handler   slog.Handler
	levelVar  *slog.LevelVar
	addSource bool
}

// logWithSkip 通用日志方法
// extraSkip: 在直接调用方之外额外需要跳过的栈帧数
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	// 仅在启用 AddSource 时才捕获调用者位置
	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Callers(0) → logWithSkip(1) → 直接调用方(2) → 业务代码(3)
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	// 日志写入失败不向业务扩散
	_ = l.handler.Handle(ctx, r)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelDebug, msg, attrs, 0)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelInfo, msg, attrs, 0)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelWarn, msg, attrs, 0)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logWithSkip(ctx, slog.LevelError, msg, attrs, 0)
}

// Stack 记录带完整堆栈的错误日志
func (l *xlogger) Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.stackWithSkip(ctx, msg, attrs, 0)
}

func (l *xlogger) stackWithSkip(ctx context.Context, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, slog.LevelError) {
		return
	}
	buf := make([]byte, 4096)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) || len(buf) >= maxStackSize {
			buf = buf[:n]
			break
		}
		buf = make([]byte, len(buf)*2)
	}
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, attrs...)
	all = append(all, slog.String(KeyStack, string(buf)))
	l.logWithSkip(ctx, slog.LevelError, msg, all, extraSkip+1)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{
		handler:   l.handler.WithAttrs(attrs),
		levelVar:  l.levelVar,
		addSource: l.addSource,
	}
}

// WithGroup 返回带分组的派生 Logger，空名称返回自身
func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return &xlogger{
		handler:   l.handler.WithGroup(name),
		levelVar:  l.levelVar,
		addSource: l.addSource,
	}
}

// SetLevel 动态设置日志级别
func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前日志级别
func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

// Enabled 检查指定级别是否启用
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}
