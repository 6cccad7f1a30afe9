// Package xcatalog 在 xstore 之前提供旁路缓存（cache-aside）的活动目录。
//
// 读取先查进程内 TTL 缓存，未命中时回源存储并按数据类别写入对应 TTL：
//
//	events             即将开始的活动列表   xttl.TTLShort
//	event_{id}         单个活动            xttl.TTLMedium
//	attendees_{id}     活动的 going 报名    xttl.TTLShort
//	user_events_{id}   组织者的活动         xttl.TTLMedium
//	profile_{id}       用户资料            xttl.TTLLong
//	categories         分类列表            xttl.TTLVeryLong
//	search_{query}     搜索结果            xttl.TTLShort
//
// 写入成功后删除受影响的键。精确键用 Delete 删除，只有 search_ 前缀用模式失效，
// 避免 "events" 这类短键按子串误删 user_events_{id}。
//
// 回源路径：同键并发加载经 singleflight 合并；存储调用由 gobreaker 熔断保护，
// 临时错误按 retry-go 策略重试，ErrNotFound 与校验错误不重试也不计入熔断失败。
package xcatalog
