// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 统一可观测性接口（追踪与指标），基于 OpenTelemetry
//   - xrotate: 日志文件轮转
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 默认实现为 noop，未配置时零开销
//   - 支持运行时调整日志级别
package observability
