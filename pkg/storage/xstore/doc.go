// Package xstore 提供活动、报名与用户资料的持久化存储。
//
// Store 是存储接口，NewRedis 返回基于 go-redis 的实现。数据布局（均带可配置前缀）：
//
//	event:{id}              活动 JSON
//	events:by_date          活动日期为分值的有序集合，用于按日期列举
//	organizer:{id}:events   组织者创建的活动 ID 集合
//	rsvps:{eventID}         报名哈希，字段为用户 ID，值为报名 JSON
//	profile:{id}            用户资料 JSON
//	categories              全部活动分类集合
//
// 活动的 AttendeeCount 不落盘，读取时按 going 报名数实时计算。
package xstore
