package xevent

import "strings"

// CategoryAll 表示不按分类筛选。
const CategoryAll = "all"

// Filter 是活动列表的筛选条件。
type Filter struct {
	// Category 为空或 "all" 时不限分类，否则忽略大小写精确匹配。
	Category string
	// Query 为空时不限，否则忽略大小写匹配标题、描述或地点的子串。
	Query string
}

// Match 报告活动是否满足筛选条件。
func (f Filter) Match(e Event) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, CategoryAll) &&
		!strings.EqualFold(f.Category, e.Category) {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		strings.Contains(strings.ToLower(e.Location), q)
}

// FilterEvents 返回满足筛选条件的活动，保持原有顺序。
func FilterEvents(events []Event, f Filter) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
