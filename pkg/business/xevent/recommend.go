package xevent

import (
	"math"
	"slices"
	"strings"
	"time"
)

// DefaultRecommendLimit 是 Recommend 在 limit <= 0 时返回的条数。
const DefaultRecommendLimit = 3

// maxReasons 每条推荐保留的理由数上限。
const maxReasons = 2

// 推荐理由。
const (
	ReasonNearby     = "Near your location"
	ReasonTech       = "Matches your tech interests"
	ReasonNetworking = "Great for networking"
	ReasonPopular    = "Popular event"
	ReasonWeekend    = "Weekend event"
	ReasonSoon       = "Coming up soon"
)

// Recommendation 是一条打分后的推荐。
type Recommendation struct {
	Event   Event    `json:"event"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Score 按规则为活动打分，返回总分与命中的全部理由（按规则顺序）。
//
// 规则累加计分：
//   - 地点包含用户所在地：+30
//   - 简介含 tech 且分类含 tech：+25
//   - 简介含 network 且分类为 Networking：+25
//   - 报名率超过 70%：+15
//   - 周末活动：+10
//   - 距今不超过 7 天（按天向上取整，已过去的也算）：+20
func Score(e Event, p Profile, now time.Time) (int, []string) {
	score := 0
	var reasons []string
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	interests := p.Interests()
	if p.Location != "" && strings.Contains(strings.ToLower(e.Location), strings.ToLower(p.Location)) {
		add(30, ReasonNearby)
	}
	if strings.Contains(interests, "tech") && strings.Contains(strings.ToLower(e.Category), "tech") {
		add(25, ReasonTech)
	}
	if strings.Contains(interests, "network") && e.Category == "Networking" {
		add(25, ReasonNetworking)
	}
	if e.AttendanceRate() > 0.7 {
		add(15, ReasonPopular)
	}

	day, err := e.Day()
	if err != nil {
		return score, reasons
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		add(10, ReasonWeekend)
	}
	daysUntil := math.Ceil(day.Sub(now).Hours() / 24)
	if daysUntil <= 7 {
		add(20, ReasonSoon)
	}
	return score, reasons
}

// Recommend 为用户挑选得分最高的活动。
//
// 只保留得分为正的活动，按得分降序稳定排序（同分保持输入顺序），
// 取前 limit 条（limit <= 0 时为 DefaultRecommendLimit），每条最多保留 2 条理由。
func Recommend(events []Event, p Profile, now time.Time, limit int) []Recommendation {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}

	recs := make([]Recommendation, 0, len(events))
	for _, e := range events {
		score, reasons := Score(e, p, now)
		if score <= 0 {
			continue
		}
		if len(reasons) > maxReasons {
			reasons = reasons[:maxReasons]
		}
		recs = append(recs, Recommendation{Event: e, Score: score, Reasons: reasons})
	}

	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return b.Score - a.Score
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
