package xstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/eventkit/pkg/business/xevent"
)

// maxTxAttempts 是乐观事务因 WATCH 冲突失败后的最大尝试次数。
const maxTxAttempts = 16

// redisStore 是基于 Redis 的 Store 实现。
type redisStore struct {
	client redis.UniversalClient
	opts   *options
}

// NewRedis 基于 go-redis 客户端创建 Store。client 为 nil 时返回 ErrNilClient。
//
// 客户端生命周期由调用方管理，Store 不负责关闭。
func NewRedis(client redis.UniversalClient, opts ...Option) (Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	o := &options{
		prefix: DefaultKeyPrefix,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &redisStore{client: client, opts: o}, nil
}

// =============================================================================
// key 布局
// =============================================================================

func (s *redisStore) eventKey(id string) string { return s.opts.prefix + "event:" + id }
func (s *redisStore) byDateKey() string         { return s.opts.prefix + "events:by_date" }
func (s *redisStore) organizerKey(id string) string {
	return s.opts.prefix + "organizer:" + id + ":events"
}
func (s *redisStore) rsvpsKey(eventID string) string { return s.opts.prefix + "rsvps:" + eventID }
func (s *redisStore) profileKey(id string) string    { return s.opts.prefix + "profile:" + id }
func (s *redisStore) categoriesKey() string          { return s.opts.prefix + "categories" }

// dayScore 返回日期（UTC 零点）的 Unix 秒，作为有序集合分值。
func dayScore(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// =============================================================================
// 活动
// =============================================================================

func (s *redisStore) ListUpcoming(ctx context.Context, from time.Time) ([]xevent.Event, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.byDateKey(), &redis.ZRangeBy{
		Min: strconv.FormatInt(dayScore(from.UTC()), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("xstore: list upcoming: %w", err)
	}
	return s.loadEvents(ctx, ids)
}

func (s *redisStore) GetEvent(ctx context.Context, id string) (xevent.Event, error) {
	events, err := s.loadEvents(ctx, []string{id})
	if err != nil {
		return xevent.Event{}, err
	}
	if len(events) == 0 {
		return xevent.Event{}, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return events[0], nil
}

func (s *redisStore) CreateEvent(ctx context.Context, e xevent.Event) (xevent.Event, error) {
	if err := e.Validate(); err != nil {
		return xevent.Event{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if e.OrganizerID == "" {
		return xevent.Event{}, fmt.Errorf("%w: organizer_id is required", ErrInvalidEvent)
	}
	if e.ID == "" {
		e.ID = s.opts.newID()
	}
	now := s.opts.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	e.AttendeeCount = 0

	day, _ := e.Day() // Validate 已保证日期合法
	data, err := json.Marshal(e)
	if err != nil {
		return xevent.Event{}, fmt.Errorf("xstore: encode event: %w", err)
	}

	// WATCH 事件键：检查与写入之间若有并发创建，事务失败并按已存在处理。
	key := s.eventKey(e.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: event %s", ErrAlreadyExists, e.ID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, s.byDateKey(), redis.Z{Score: float64(dayScore(day)), Member: e.ID})
			pipe.SAdd(ctx, s.organizerKey(e.OrganizerID), e.ID)
			pipe.SAdd(ctx, s.categoriesKey(), e.Category)
			return nil
		})
		return err
	}, key)
	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, ErrAlreadyExists):
		return xevent.Event{}, err
	case errors.Is(err, redis.TxFailedErr):
		return xevent.Event{}, fmt.Errorf("%w: event %s", ErrAlreadyExists, e.ID)
	default:
		return xevent.Event{}, fmt.Errorf("xstore: create event: %w", err)
	}
}

func (s *redisStore) ListByOrganizer(ctx context.Context, organizerID string) ([]xevent.Event, error) {
	ids, err := s.client.SMembers(ctx, s.organizerKey(organizerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("xstore: list by organizer: %w", err)
	}
	events, err := s.loadEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(events, func(a, b xevent.Event) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Time, b.Time), cmp.Compare(a.ID, b.ID))
	})
	return events, nil
}

// loadEvents 批量读取活动并填充报名人数，跳过已不存在的 ID，保持 ids 的顺序。
func (s *redisStore) loadEvents(ctx context.Context, ids []string) ([]xevent.Event, error) {
	if len(ids) == 0 {
		return []xevent.Event{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.eventKey(id)
	}
	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("xstore: load events: %w", err)
	}

	events := make([]xevent.Event, 0, len(ids))
	for i, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var e xevent.Event
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			return nil, fmt.Errorf("%w: event %s: %w", ErrCorruptRecord, ids[i], err)
		}
		events = append(events, e)
	}

	// 一次往返取回全部报名，计算 going 人数。
	cmds := make([]*redis.StringSliceCmd, len(events))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range events {
			cmds[i] = pipe.HVals(ctx, s.rsvpsKey(events[i].ID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("xstore: load attendees: %w", err)
	}
	for i, cmd := range cmds {
		rsvps, err := decodeRSVPs(cmd.Val())
		if err != nil {
			return nil, err
		}
		events[i].AttendeeCount = xevent.CountGoing(rsvps)
	}
	return events, nil
}

// =============================================================================
// 报名
// =============================================================================

func (s *redisStore) UpsertRSVP(ctx context.Context, r xevent.RSVP) (xevent.RSVP, error) {
	if r.EventID == "" || r.UserID == "" {
		return xevent.RSVP{}, fmt.Errorf("%w: event_id and user_id are required", ErrInvalidRSVP)
	}
	if !r.Status.IsValid() {
		return xevent.RSVP{}, fmt.Errorf("%w: %w", ErrInvalidRSVP, xevent.ErrInvalidStatus)
	}

	n, err := s.client.Exists(ctx, s.eventKey(r.EventID)).Result()
	if err != nil {
		return xevent.RSVP{}, fmt.Errorf("xstore: upsert rsvp: %w", err)
	}
	if n == 0 {
		return xevent.RSVP{}, fmt.Errorf("%w: event %s", ErrNotFound, r.EventID)
	}

	now := s.opts.now().UTC()
	key := s.rsvpsKey(r.EventID)
	// 读取旧记录与写入放在同一个 WATCH 事务中，保证并发报名时 CreatedAt 只由首次写入决定。
	// 每次冲突都意味着另一方已提交，重试上限按并发写入者数量留足余量。
	for range maxTxAttempts {
		err = s.client.Watch(ctx, func(tx *redis.Tx) error {
			r.CreatedAt, r.UpdatedAt = now, now
			prev, err := tx.HGet(ctx, key, r.UserID).Result()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return err
			default:
				var old xevent.RSVP
				if json.Unmarshal([]byte(prev), &old) == nil && !old.CreatedAt.IsZero() {
					r.CreatedAt = old.CreatedAt
				}
			}
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("xstore: encode rsvp: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, r.UserID, data)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return xevent.RSVP{}, fmt.Errorf("xstore: upsert rsvp: %w", err)
	}
	return r, nil
}

func (s *redisStore) ListRSVPs(ctx context.Context, eventID string) ([]xevent.RSVP, error) {
	vals, err := s.client.HVals(ctx, s.rsvpsKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("xstore: list rsvps: %w", err)
	}
	rsvps, err := decodeRSVPs(vals)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rsvps, func(a, b xevent.RSVP) int { return cmp.Compare(a.UserID, b.UserID) })
	return rsvps, nil
}

func decodeRSVPs(vals []string) ([]xevent.RSVP, error) {
	rsvps := make([]xevent.RSVP, 0, len(vals))
	for _, v := range vals {
		var r xevent.RSVP
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("%w: rsvp: %w", ErrCorruptRecord, err)
		}
		rsvps = append(rsvps, r)
	}
	return rsvps, nil
}

// =============================================================================
// 用户资料与分类
// =============================================================================

func (s *redisStore) GetProfile(ctx context.Context, userID string) (xevent.Profile, error) {
	data, err := s.client.Get(ctx, s.profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return xevent.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	if err != nil {
		return xevent.Profile{}, fmt.Errorf("xstore: get profile: %w", err)
	}
	var p xevent.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return xevent.Profile{}, fmt.Errorf("%w: profile %s: %w", ErrCorruptRecord, userID, err)
	}
	return p, nil
}

func (s *redisStore) UpsertProfile(ctx context.Context, p xevent.Profile) (xevent.Profile, error) {
	if p.ID == "" {
		return xevent.Profile{}, fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	now := s.opts.now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		old, err := s.GetProfile(ctx, p.ID)
		switch {
		case err == nil:
			p.CreatedAt = old.CreatedAt
		case errors.Is(err, ErrNotFound):
			p.CreatedAt = now
		default:
			return xevent.Profile{}, err
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return xevent.Profile{}, fmt.Errorf("xstore: encode profile: %w", err)
	}
	if err := s.client.Set(ctx, s.profileKey(p.ID), data, 0).Err(); err != nil {
		return xevent.Profile{}, fmt.Errorf("xstore: upsert profile: %w", err)
	}
	return p, nil
}

func (s *redisStore) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.client.SMembers(ctx, s.categoriesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("xstore: categories: %w", err)
	}
	slices.Sort(cats)
	return cats, nil
}
