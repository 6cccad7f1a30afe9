// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 动态级别调整（运行时热更新，配合 xconf.Watch 使用）
//   - 常用属性构造函数（缓存 key、事件 ID、用户 ID 等）
//   - 全局 Logger 便利函数
//
// # 创建 Logger
//
// Builder 采用 first-error-wins：遇到第一个配置错误后，后续 Set 操作的错误被忽略，
// Build 返回第一个错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/eventkit/app.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// # 全局 Logger
//
// 适用于 CLI 等简单场景，服务端推荐依赖注入：
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// Level 实现 encoding.TextMarshaler/TextUnmarshaler，可直接写在配置文件中。
package xlog
