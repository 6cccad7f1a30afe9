package xstore

import (
	"context"
	"time"

	"github.com/omeyang/eventkit/pkg/business/xevent"
)

// Store 定义活动数据的存储接口。
//
// 所有读取方法在记录不存在时返回 ErrNotFound（列表类方法返回空切片）。
type Store interface {
	// ListUpcoming 返回日期不早于 from 当天的活动，按日期升序。
	ListUpcoming(ctx context.Context, from time.Time) ([]xevent.Event, error)

	// GetEvent 返回单个活动。
	GetEvent(ctx context.Context, id string) (xevent.Event, error)

	// CreateEvent 校验并保存活动，ID 为空时生成 UUID，返回保存后的活动。
	// 指定的 ID 已存在时返回 ErrAlreadyExists，不覆盖原活动。
	CreateEvent(ctx context.Context, e xevent.Event) (xevent.Event, error)

	// ListByOrganizer 返回组织者创建的全部活动，按日期升序。
	ListByOrganizer(ctx context.Context, organizerID string) ([]xevent.Event, error)

	// UpsertRSVP 新建或更新 (EventID, UserID) 的报名，活动不存在时返回 ErrNotFound。
	UpsertRSVP(ctx context.Context, r xevent.RSVP) (xevent.RSVP, error)

	// ListRSVPs 返回活动的全部报名，按用户 ID 排序。
	ListRSVPs(ctx context.Context, eventID string) ([]xevent.RSVP, error)

	// GetProfile 返回用户资料。
	GetProfile(ctx context.Context, userID string) (xevent.Profile, error)

	// UpsertProfile 新建或更新用户资料。
	UpsertProfile(ctx context.Context, p xevent.Profile) (xevent.Profile, error)

	// Categories 返回已有活动的全部分类，按字母序。
	Categories(ctx context.Context) ([]string, error)
}
