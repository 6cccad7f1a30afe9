package xttl

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// entry 是缓存中的一个条目。写入后不可变，覆盖写入会替换整个条目。
type entry[V any] struct {
	key      string
	value    V
	storedAt time.Time
	ttl      time.Duration
}

// isExpired 判定条目在 now 时刻是否过期，严格大于才算过期。
// Get、Has、Stats、Cleanup 共用此判定。
func isExpired[V any](e *entry[V], now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// removal 记录一次移除，在锁外统一通知。
type removal[V any] struct {
	key    string
	value  V
	reason RemovalReason
}

// Cache 是并发安全的 TTL 缓存。
//
// 必须通过 [New] 创建，零值不可用。
// 内部以 LRU 链表索引条目：Get 命中存活条目会刷新其最近使用位置，
// 因此读写共用一把互斥锁。
type Cache[V any] struct {
	mu   sync.Mutex
	lru  *simplelru.LRU[string, *entry[V]]
	opts *options[V]

	hits   uint64
	misses uint64
}

// New 创建缓存。
//
// 选项校验失败时返回 ErrInvalidTTL、ErrInvalidMaxEntries 或 ErrNilClock。
func New[V any](opts ...Option[V]) (*Cache[V], error) {
	o := defaultOptions[V]()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	// 容量由 Cache 自行控制（需要先回收过期条目），底层 LRU 只作为有序索引使用。
	lru, err := simplelru.NewLRU[string, *entry[V]](math.MaxInt, nil)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: lru, opts: o}, nil
}

// DefaultTTL 返回 Set 使用的默认存活时长。
func (c *Cache[V]) DefaultTTL() time.Duration {
	return c.opts.defaultTTL
}

// Set 以默认 TTL 写入，覆盖同名条目。
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.opts.defaultTTL)
}

// SetWithTTL 以指定 TTL 写入，覆盖同名条目（值、写入时间、TTL 全部替换）。
//
// ttl <= 0 的条目在时间推进后的首次读取即视为过期。
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	now := c.opts.clock.Now()
	var removed []removal[V]
	if !c.lru.Contains(key) {
		removed = c.makeRoomLocked(now)
	}
	c.lru.Add(key, &entry[V]{key: key, value: value, storedAt: now, ttl: ttl})
	c.mu.Unlock()

	c.notify(removed)
}

// makeRoomLocked 在插入新键前保证容量：先回收过期条目，仍然满则淘汰最久未使用的条目。
func (c *Cache[V]) makeRoomLocked(now time.Time) []removal[V] {
	limit := c.opts.maxEntries
	if limit <= 0 || c.lru.Len() < limit {
		return nil
	}
	removed := c.removeLocked(func(e *entry[V]) bool { return isExpired(e, now) }, ReasonExpired)
	for c.lru.Len() >= limit {
		_, e, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		removed = append(removed, removal[V]{key: e.key, value: e.value, reason: ReasonCapacity})
	}
	return removed
}

// Get 返回存活条目的值。
//
// 键不存在或已过期时返回零值和 false；过期条目会被立即删除。
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	if isExpired(e, c.opts.clock.Now()) {
		c.lru.Remove(key)
		c.misses++
		c.mu.Unlock()
		c.notify([]removal[V]{{key: key, value: e.value, reason: ReasonExpired}})
		var zero V
		return zero, false
	}
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Has 报告键是否存在且未过期，判定与 Get 一致；过期条目会被立即删除。
// 与 Get 不同，Has 不刷新条目的最近使用位置。
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	e, ok := c.lru.Peek(key)
	if !ok {
		c.misses++
		c.mu.Unlock()
		return false
	}
	if isExpired(e, c.opts.clock.Now()) {
		c.lru.Remove(key)
		c.misses++
		c.mu.Unlock()
		c.notify([]removal[V]{{key: key, value: e.value, reason: ReasonExpired}})
		return false
	}
	c.hits++
	c.mu.Unlock()
	return true
}

// Delete 无条件删除键，返回删除前是否存在（过期条目也算存在）。
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	e, ok := c.lru.Peek(key)
	if ok {
		c.lru.Remove(key)
	}
	c.mu.Unlock()

	if ok {
		c.notify([]removal[V]{{key: key, value: e.value, reason: ReasonDeleted}})
	}
	return ok
}

// Clear 清空所有条目。
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	removed := c.removeLocked(func(*entry[V]) bool { return true }, ReasonCleared)
	c.mu.Unlock()

	c.notify(removed)
}

// Keys 返回包含 pattern 子串的所有键，pattern 为空时返回全部键。
//
// 这是原始列举：不做过期过滤，已过期但尚未回收的键同样返回。
// 顺序为最久未使用到最近使用。
func (c *Cache[V]) Keys(pattern string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keysLocked(pattern)
}

func (c *Cache[V]) keysLocked(pattern string) []string {
	all := c.lru.Keys()
	if pattern == "" {
		return all
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.Contains(k, pattern) {
			keys = append(keys, k)
		}
	}
	return keys
}

// InvalidatePattern 删除 Keys(pattern) 返回的全部键，返回删除数量。
func (c *Cache[V]) InvalidatePattern(pattern string) int {
	c.mu.Lock()
	keys := c.keysLocked(pattern)
	removed := make([]removal[V], 0, len(keys))
	for _, k := range keys {
		if e, ok := c.lru.Peek(k); ok {
			c.lru.Remove(k)
			removed = append(removed, removal[V]{key: k, value: e.value, reason: ReasonInvalidated})
		}
	}
	c.mu.Unlock()

	c.notify(removed)
	return len(removed)
}

// Cleanup 删除所有已过期条目，返回删除数量。
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	now := c.opts.clock.Now()
	removed := c.removeLocked(func(e *entry[V]) bool { return isExpired(e, now) }, ReasonExpired)
	c.mu.Unlock()

	c.notify(removed)
	return len(removed)
}

// Len 返回物理条目数，包含已过期但尚未回收的条目。
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// removeLocked 删除所有满足 match 的条目。调用方必须持有锁。
func (c *Cache[V]) removeLocked(match func(*entry[V]) bool, reason RemovalReason) []removal[V] {
	var removed []removal[V]
	for _, e := range c.lru.Values() {
		if match(e) {
			c.lru.Remove(e.key)
			removed = append(removed, removal[V]{key: e.key, value: e.value, reason: reason})
		}
	}
	return removed
}

func (c *Cache[V]) notify(removed []removal[V]) {
	if c.opts.onRemoved == nil {
		return
	}
	for _, r := range removed {
		c.opts.onRemoved(r.key, r.value, r.reason)
	}
}

// GetAs 从异构缓存中读取并断言为 T。
// 条目不存在、已过期或类型不匹配时返回零值和 false。
func GetAs[T any](c *Cache[any], key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
