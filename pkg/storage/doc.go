// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xttl: 进程内 TTL 缓存，惰性过期加后台清理
//   - xstore: 活动、报名与用户资料的持久化，基于 Redis
package storage
