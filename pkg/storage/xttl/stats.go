package xttl

// Stats 是缓存在某一时刻的统计快照。
type Stats struct {
	// TotalEntries 物理条目数，包含已过期但尚未回收的条目。
	TotalEntries int
	// ValidEntries 未过期条目数。
	ValidEntries int
	// ExpiredEntries 已过期但尚未回收的条目数。
	ExpiredEntries int
	// HitRate 存活比例 ValidEntries/(ValidEntries+ExpiredEntries)，缓存为空时为 0。
	//
	// 注意这是新鲜度比例而非请求命中率，请求命中率见 RequestHitRate。
	HitRate float64

	// Hits 累计 Get/Has 命中次数。
	Hits uint64
	// Misses 累计 Get/Has 未命中次数（含因过期被淘汰的读取）。
	Misses uint64
}

// RequestHitRate 返回 Hits/(Hits+Misses)，尚无请求时为 0。
func (s Stats) RequestHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats 扫描所有条目生成统计快照。
//
// 纯读取：不淘汰条目，也不改变最近使用顺序。
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.clock.Now()
	s := Stats{Hits: c.hits, Misses: c.misses}
	for _, e := range c.lru.Values() {
		if isExpired(e, now) {
			s.ExpiredEntries++
		} else {
			s.ValidEntries++
		}
	}
	s.TotalEntries = s.ValidEntries + s.ExpiredEntries
	if s.TotalEntries > 0 {
		s.HitRate = float64(s.ValidEntries) / float64(s.TotalEntries)
	}
	return s
}
