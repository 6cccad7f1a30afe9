package xstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/eventkit/pkg/business/xevent"
)

var fixedNow = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	seq := 0
	base := []Option{
		WithNow(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("ev-%d", seq) }),
	}
	s, err := NewRedis(client, append(base, opts...)...)
	require.NoError(t, err)
	return s, mr
}

func event(date, category, organizer string) xevent.Event {
	return xevent.Event{
		Title:        category + " on " + date,
		Date:         date,
		Time:         "18:00",
		Category:     category,
		MaxAttendees: 10,
		OrganizerID:  organizer,
	}
}

func TestNewRedis_NilClient(t *testing.T) {
	s, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrNilClient)
	assert.Nil(t, s)
}

func TestRedisStore_CreateAndGetEvent(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateEvent(ctx, event("2024-06-08", "Music", "org-1"))
	require.NoError(t, err)
	assert.Equal(t, "ev-1", created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.True(t, mr.Exists(DefaultKeyPrefix+"event:ev-1"))

	got, err := s.GetEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Zero(t, got.AttendeeCount)

	_, err = s.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CreateEventValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, xevent.Event{Title: "no date"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.ErrorIs(t, err, xevent.ErrInvalidEvent)

	_, err = s.CreateEvent(ctx, event("2024-06-08", "Music", ""))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestRedisStore_ListUpcoming(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2024-06-10", "2024-06-01", "2024-06-03", "2024-06-05"} {
		_, err := s.CreateEvent(ctx, event(d, "Music", "org-1"))
		require.NoError(t, err)
	}

	events, err := s.ListUpcoming(ctx, fixedNow)
	require.NoError(t, err)
	dates := make([]string, len(events))
	for i, e := range events {
		dates[i] = e.Date
	}
	// 当天的活动包含在内，按日期升序。
	assert.Equal(t, []string{"2024-06-03", "2024-06-05", "2024-06-10"}, dates)
}

func TestRedisStore_ListUpcomingEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	events, err := s.ListUpcoming(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRedisStore_ListByOrganizer(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, event("2024-06-10", "Music", "org-1"))
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, event("2024-06-05", "Art", "org-1"))
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, event("2024-06-07", "Art", "org-2"))
	require.NoError(t, err)

	events, err := s.ListByOrganizer(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "2024-06-05", events[0].Date)
	assert.Equal(t, "2024-06-10", events[1].Date)

	none, err := s.ListByOrganizer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisStore_RSVP(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, event("2024-06-08", "Music", "org-1"))
	require.NoError(t, err)

	for user, status := range map[string]xevent.RSVPStatus{
		"u1": xevent.StatusGoing,
		"u2": xevent.StatusGoing,
		"u3": xevent.StatusMaybe,
	} {
		_, err := s.UpsertRSVP(ctx, xevent.RSVP{EventID: e.ID, UserID: user, Status: status})
		require.NoError(t, err)
	}

	got, err := s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AttendeeCount)

	// 更新已有报名，人数随之变化。
	_, err = s.UpsertRSVP(ctx, xevent.RSVP{EventID: e.ID, UserID: "u2", Status: xevent.StatusNotGoing})
	require.NoError(t, err)

	rsvps, err := s.ListRSVPs(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, rsvps, 3)
	assert.Equal(t, "u1", rsvps[0].UserID)
	assert.Equal(t, xevent.StatusNotGoing, rsvps[1].Status)

	got, err = s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendeeCount)
}

func TestRedisStore_CreateEventDuplicateID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	e := event("2024-06-08", "Music", "org-1")
	e.ID = "fixed"
	_, err := s.CreateEvent(ctx, e)
	require.NoError(t, err)

	dup := event("2024-06-09", "Tech", "org-2")
	dup.ID = "fixed"
	_, err = s.CreateEvent(ctx, dup)
	require.ErrorIs(t, err, ErrAlreadyExists)

	// 原活动与索引保持不变。
	got, err := s.GetEvent(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "Music", got.Category)
	assert.Equal(t, "org-1", got.OrganizerID)

	other, err := s.ListByOrganizer(ctx, "org-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Music"}, cats)
}

func TestRedisStore_RSVPConcurrentKeepsFirstCreatedAt(t *testing.T) {
	var tick atomic.Int64
	s, _ := newTestStore(t, WithNow(func() time.Time {
		return fixedNow.Add(time.Duration(tick.Add(1)) * time.Second)
	}))
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, event("2024-06-08", "Music", "org-1"))
	require.NoError(t, err)

	const writers = 8
	results := make([]xevent.RSVP, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.UpsertRSVP(ctx, xevent.RSVP{EventID: e.ID, UserID: "u1", Status: xevent.StatusGoing})
			assert.NoError(t, err)
			results[i] = r
		}()
	}
	wg.Wait()

	rsvps, err := s.ListRSVPs(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	created := rsvps[0].CreatedAt
	for _, r := range results {
		assert.True(t, created.Equal(r.CreatedAt), "created_at %v != %v", r.CreatedAt, created)
	}
}

func TestRedisStore_RSVPValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertRSVP(ctx, xevent.RSVP{EventID: "x", UserID: "u", Status: "later"})
	assert.ErrorIs(t, err, ErrInvalidRSVP)
	assert.ErrorIs(t, err, xevent.ErrInvalidStatus)

	_, err = s.UpsertRSVP(ctx, xevent.RSVP{UserID: "u", Status: xevent.StatusGoing})
	assert.ErrorIs(t, err, ErrInvalidRSVP)

	_, err = s.UpsertRSVP(ctx, xevent.RSVP{EventID: "missing", UserID: "u", Status: xevent.StatusGoing})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Profile(t *testing.T) {
	now := fixedNow
	s, _ := newTestStore(t, WithNow(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpsertProfile(ctx, xevent.Profile{})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	p, err := s.UpsertProfile(ctx, xevent.Profile{ID: "u1", Name: "Ada", Location: "Seattle"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, p.CreatedAt)

	now = now.Add(time.Hour)
	p, err = s.UpsertProfile(ctx, xevent.Profile{ID: "u1", Name: "Ada L.", Bio: "tech"})
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(p.CreatedAt), "created_at preserved on update")
	assert.Equal(t, now, p.UpdatedAt)

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "tech", got.Bio)
}

func TestRedisStore_Categories(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"Music", "Art", "Music", "Technology"} {
		_, err := s.CreateEvent(ctx, event("2024-06-08", c, "org-1"))
		require.NoError(t, err)
	}
	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Art", "Music", "Technology"}, cats)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	s, mr := newTestStore(t, WithKeyPrefix("test:"))
	_, err := s.CreateEvent(context.Background(), event("2024-06-08", "Music", "org-1"))
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:event:ev-1"))
	assert.True(t, mr.Exists("test:events:by_date"))
}

func TestRedisStore_CorruptRecord(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(DefaultKeyPrefix+"profile:bad", "{not json"))

	_, err := s.GetProfile(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.Categories(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
