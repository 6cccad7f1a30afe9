// Package xrotate 提供日志文件轮转功能。
//
// Rotator 是 io.WriteCloser 的超集，可直接作为 xlog 的输出目标。
// 当前唯一实现 [NewLumberjack] 基于 lumberjack v2，按文件大小轮转，
// 按数量和天数清理备份。
package xrotate
