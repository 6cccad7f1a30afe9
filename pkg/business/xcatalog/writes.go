package xcatalog

import (
	"context"
	"fmt"

	"github.com/omeyang/eventkit/pkg/business/xevent"
	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xmetrics"
)

// CreateEvent 保存活动并失效活动列表、搜索结果、分类与组织者活动列表。
func (c *Catalog) CreateEvent(ctx context.Context, e xevent.Event) (created xevent.Event, err error) {
	ctx, end := c.observe(ctx, "create_event")
	defer func() { end(err) }()

	v, err := c.call(ctx, func(ctx context.Context) (any, error) {
		return c.store.CreateEvent(ctx, e)
	})
	if err != nil {
		return xevent.Event{}, err
	}
	created = v.(xevent.Event)

	c.invalidate(ctx, "create_event",
		[]string{KeyEvents, KeyCategories, UserEventsKey(created.OrganizerID)},
		PrefixSearch,
	)
	c.opts.logger.Info(ctx, "event created", xlog.EventID(created.ID), xlog.UserID(created.OrganizerID))
	return created, nil
}

// UpdateRSVP 新建或更新用户的报名，并失效该活动详情、报名列表、活动列表与搜索结果。
func (c *Catalog) UpdateRSVP(ctx context.Context, eventID, userID string, status xevent.RSVPStatus) (rsvp xevent.RSVP, err error) {
	ctx, end := c.observe(ctx, "update_rsvp", xmetrics.String("status", string(status)))
	defer func() { end(err) }()

	if !status.IsValid() {
		return xevent.RSVP{}, fmt.Errorf("%w: %w", ErrInvalidArgument, xevent.ErrInvalidStatus)
	}
	if eventID == "" || userID == "" {
		return xevent.RSVP{}, fmt.Errorf("%w: event id and user id are required", ErrInvalidArgument)
	}

	v, err := c.call(ctx, func(ctx context.Context) (any, error) {
		return c.store.UpsertRSVP(ctx, xevent.RSVP{EventID: eventID, UserID: userID, Status: status})
	})
	if err != nil {
		return xevent.RSVP{}, err
	}
	rsvp = v.(xevent.RSVP)

	c.invalidate(ctx, "update_rsvp",
		[]string{EventKey(eventID), AttendeesKey(eventID), KeyEvents},
		PrefixSearch,
	)
	c.opts.logger.Info(ctx, "rsvp updated",
		xlog.EventID(eventID), xlog.UserID(userID), xlog.Reason(status.String()))
	return rsvp, nil
}

// UpdateProfile 保存用户资料并删除其缓存。
func (c *Catalog) UpdateProfile(ctx context.Context, p xevent.Profile) (saved xevent.Profile, err error) {
	ctx, end := c.observe(ctx, "update_profile")
	defer func() { end(err) }()

	v, err := c.call(ctx, func(ctx context.Context) (any, error) {
		return c.store.UpsertProfile(ctx, p)
	})
	if err != nil {
		return xevent.Profile{}, err
	}
	saved = v.(xevent.Profile)

	c.invalidate(ctx, "update_profile", []string{ProfileKey(saved.ID)})
	return saved, nil
}
