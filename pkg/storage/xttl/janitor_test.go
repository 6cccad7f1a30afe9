package xttl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/eventkit/pkg/observability/xlog"
)

type countingSweeper struct {
	calls atomic.Int32
	panic bool
}

func (s *countingSweeper) Cleanup() int {
	s.calls.Add(1)
	if s.panic {
		panic("sweep failed")
	}
	return 0
}

func TestNewJanitor_Validation(t *testing.T) {
	_, err := NewJanitor(nil)
	assert.ErrorIs(t, err, ErrNilSweeper)

	_, err = NewJanitor(&countingSweeper{}, WithInterval(0))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	j, err := NewJanitor(&countingSweeper{}, nil, WithJanitorLogger(nil), WithJanitorName(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultSweepInterval, j.Interval())
}

func TestJanitor_SweepsExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache[int](t, clock)
	c.SetWithTTL("short", 1, time.Second)
	c.SetWithTTL("long", 2, time.Hour)
	clock.Advance(2 * time.Second)

	j, err := NewJanitor(c, WithInterval(5*time.Millisecond), WithJanitorLogger(xlog.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	assert.Eventually(t, func() bool { return c.Len() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"long"}, c.Keys(""))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitor_RecoversFromPanic(t *testing.T) {
	s := &countingSweeper{panic: true}
	j, err := NewJanitor(s, WithInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	// panic 之后调度仍在继续。
	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestJanitor_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache[int](t, clock)
	c.SetWithTTL("k", 1, time.Second)
	clock.Advance(time.Minute)

	j, err := NewJanitor(c)
	require.NoError(t, err)
	assert.Equal(t, 1, j.Sweep(context.Background()))
}

func TestEvery_Next(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Add(250*time.Millisecond), every(250*time.Millisecond).Next(now))
}
