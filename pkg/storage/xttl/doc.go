// Package xttl 提供进程内的 TTL 键值缓存。
//
// 每个条目记录写入时间与存活时长，读取时按"当前时间 - 写入时间 > ttl"判定过期。
// 过期条目在两条路径上被回收：
//   - 拉取路径：Get/Has 命中过期条目时立即删除（惰性淘汰）
//   - 推送路径：Cleanup 全量扫描删除所有过期条目，通常由 Janitor 周期调用
//
// 两条路径共享同一个过期判定函数，保证 Has 与 Get 的结论一致。
//
// 基本用法：
//
//	cache, err := xttl.New[string]()
//	if err != nil {
//	    return err
//	}
//	cache.SetWithTTL("event_1", payload, xttl.TTLMedium)
//	if v, ok := cache.Get("event_1"); ok {
//	    use(v)
//	}
//
// 设计决策: 不提供包级单例。缓存实例显式创建并注入使用方，测试可构造相互隔离的实例；
// 周期清理由调用方持有的 Janitor 驱动，随 context 取消而停止。
//
// 默认不限容量。通过 WithMaxEntries 设置上限后，插入新键时先回收已过期条目，
// 仍然超限才按最近最少使用淘汰存活条目。
package xttl
