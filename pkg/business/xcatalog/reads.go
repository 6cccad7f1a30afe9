package xcatalog

import (
	"context"
	"errors"
	"slices"

	"github.com/omeyang/eventkit/pkg/business/xevent"
	"github.com/omeyang/eventkit/pkg/storage/xstore"
	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

// 缓存中的切片为共享数据，对外返回副本。

// UpcomingEvents 返回今天及以后的活动，按日期升序。
func (c *Catalog) UpcomingEvents(ctx context.Context) ([]xevent.Event, error) {
	events, err := c.upcoming(ctx)
	return slices.Clone(events), err
}

func (c *Catalog) upcoming(ctx context.Context) ([]xevent.Event, error) {
	return cached(ctx, c, "upcoming_events", KeyEvents, xttl.TTLShort,
		guarded(c, func(ctx context.Context) ([]xevent.Event, error) {
			return c.store.ListUpcoming(ctx, c.opts.now())
		}))
}

// Event 返回单个活动。
func (c *Catalog) Event(ctx context.Context, id string) (xevent.Event, error) {
	return cached(ctx, c, "event", EventKey(id), xttl.TTLMedium,
		guarded(c, func(ctx context.Context) (xevent.Event, error) {
			return c.store.GetEvent(ctx, id)
		}))
}

// Attendees 返回活动中状态为 going 的报名。
func (c *Catalog) Attendees(ctx context.Context, eventID string) ([]xevent.RSVP, error) {
	rsvps, err := cached(ctx, c, "attendees", AttendeesKey(eventID), xttl.TTLShort,
		guarded(c, func(ctx context.Context) ([]xevent.RSVP, error) {
			all, err := c.store.ListRSVPs(ctx, eventID)
			if err != nil {
				return nil, err
			}
			return slices.DeleteFunc(all, func(r xevent.RSVP) bool {
				return r.Status != xevent.StatusGoing
			}), nil
		}))
	return slices.Clone(rsvps), err
}

// OrganizerEvents 返回用户组织的全部活动。
func (c *Catalog) OrganizerEvents(ctx context.Context, userID string) ([]xevent.Event, error) {
	events, err := cached(ctx, c, "organizer_events", UserEventsKey(userID), xttl.TTLMedium,
		guarded(c, func(ctx context.Context) ([]xevent.Event, error) {
			return c.store.ListByOrganizer(ctx, userID)
		}))
	return slices.Clone(events), err
}

// Profile 返回用户资料。
func (c *Catalog) Profile(ctx context.Context, userID string) (xevent.Profile, error) {
	return cached(ctx, c, "profile", ProfileKey(userID), xttl.TTLLong,
		guarded(c, func(ctx context.Context) (xevent.Profile, error) {
			return c.store.GetProfile(ctx, userID)
		}))
}

// Categories 返回全部活动分类。
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	cats, err := cached(ctx, c, "categories", KeyCategories, xttl.TTLVeryLong,
		guarded(c, func(ctx context.Context) ([]string, error) {
			return c.store.Categories(ctx)
		}))
	return slices.Clone(cats), err
}

// Search 返回满足筛选条件的即将开始的活动。
//
// 结果以 SearchKey(f) 为键单独缓存；底层列表复用 UpcomingEvents 的缓存，
// 过滤本身不访问存储，因此不经过熔断与重试。
func (c *Catalog) Search(ctx context.Context, f xevent.Filter) ([]xevent.Event, error) {
	events, err := cached(ctx, c, "search", SearchKey(f), xttl.TTLShort,
		func(ctx context.Context) ([]xevent.Event, error) {
			upcoming, err := c.upcoming(ctx)
			if err != nil {
				return nil, err
			}
			return xevent.FilterEvents(upcoming, f), nil
		})
	return slices.Clone(events), err
}

// Recommendations 基于用户资料为其推荐即将开始的活动，limit <= 0 时取默认条数。
// 用户没有资料时按空资料打分，只剩热度与日期规则生效。
func (c *Catalog) Recommendations(ctx context.Context, userID string, limit int) ([]xevent.Recommendation, error) {
	ctx, end := c.observe(ctx, "recommendations")
	profile, err := c.Profile(ctx, userID)
	switch {
	case errors.Is(err, xstore.ErrNotFound):
		profile = xevent.Profile{ID: userID}
	case err != nil:
		end(err)
		return nil, err
	}
	events, err := c.upcoming(ctx)
	if err != nil {
		end(err)
		return nil, err
	}
	recs := xevent.Recommend(events, profile, c.opts.now(), limit)
	end(nil)
	return recs, nil
}
