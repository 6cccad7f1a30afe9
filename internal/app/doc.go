// Package app 装配 eventkit 的运行时组件。
//
// Config 描述全部配置项（log、redis、cache、catalog 四个分区），
// New 按配置依次构建日志、Redis 客户端、存储、缓存、目录与清理器，
// Serve 在 xrun 下运行后台任务直到收到退出信号。
package app
