package xcatalog

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/eventkit/pkg/business/xevent"
)

// 缓存键。
const (
	KeyEvents     = "events"
	KeyCategories = "categories"

	PrefixEvent      = "event_"
	PrefixProfile    = "profile_"
	PrefixUserEvents = "user_events_"
	PrefixAttendees  = "attendees_"
	PrefixSearch     = "search_"
)

// maxQueryKeyLen 搜索键中查询部分的最大字节数，超过后以哈希代替。
const maxQueryKeyLen = 64

// EventKey 返回单个活动的缓存键。
func EventKey(id string) string { return PrefixEvent + id }

// ProfileKey 返回用户资料的缓存键。
func ProfileKey(id string) string { return PrefixProfile + id }

// UserEventsKey 返回组织者活动列表的缓存键。
func UserEventsKey(id string) string { return PrefixUserEvents + id }

// AttendeesKey 返回活动报名列表的缓存键。
func AttendeesKey(id string) string { return PrefixAttendees + id }

// SearchKey 返回搜索结果的缓存键。
//
// 查询先去除首尾空白并转小写；指定了分类时以 "分类:查询" 组合。
// 组合结果超过 64 字节时替换为其 xxhash64 十六进制摘要，使键长有界。
func SearchKey(f xevent.Filter) string {
	q := normalize(f.Query)
	if cat := normalize(f.Category); cat != "" && cat != xevent.CategoryAll {
		q = cat + ":" + q
	}
	if len(q) > maxQueryKeyLen {
		q = strconv.FormatUint(xxhash.Sum64String(q), 16)
	}
	return PrefixSearch + q
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
