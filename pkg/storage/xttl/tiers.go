package xttl

import "time"

// 常用 TTL 档位，按数据变化频率选择。
const (
	// TTLShort 适用于列表、搜索结果等频繁变化的数据。
	TTLShort = 2 * time.Minute
	// TTLMedium 适用于单个实体详情。
	TTLMedium = 5 * time.Minute
	// TTLLong 适用于用户资料等较少变化的数据。
	TTLLong = 15 * time.Minute
	// TTLVeryLong 适用于分类等近乎静态的数据。
	TTLVeryLong = 60 * time.Minute

	// DefaultTTL 是 Set 使用的默认存活时长。
	DefaultTTL = TTLMedium
)
