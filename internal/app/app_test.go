package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/eventkit/pkg/business/xevent"
	"github.com/omeyang/eventkit/pkg/config/xconf"
	"github.com/omeyang/eventkit/pkg/lifecycle/xrun"
	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xmetrics"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, closeLog, err := xlog.New().SetOutput(io.Discard).SetLevelString(cfg.Log.Level).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeLog() })

	a, err := New(cfg, WithRedisClient(client), WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	return a
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.DefaultTTL = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewWiresComponents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.MaxEntries = 10
	a := newTestApp(t, cfg)

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Catalog)
	assert.Same(t, a.Cache, a.Catalog.Cache())
	assert.Equal(t, cfg.Cache.SweepInterval, a.Janitor.Interval())
	assert.Equal(t, cfg.Cache.DefaultTTL, a.Cache.DefaultTTL())
}

func TestNewObserverFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		a := newTestApp(t, DefaultConfig())
		assert.IsType(t, xmetrics.NoopObserver{}, a.Observer)
	})

	t.Run("enabled reports to global provider", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		prev := otel.GetTracerProvider()
		otel.SetTracerProvider(tp)
		t.Cleanup(func() {
			otel.SetTracerProvider(prev)
			_ = tp.Shutdown(context.Background())
		})

		cfg := DefaultConfig()
		cfg.Metrics.Enabled = true
		a := newTestApp(t, cfg)
		_, isNoop := a.Observer.(xmetrics.NoopObserver)
		assert.False(t, isNoop)

		_, err := a.Catalog.Categories(context.Background())
		require.NoError(t, err)

		var names []string
		for _, s := range exporter.GetSpans() {
			names = append(names, s.Name)
		}
		assert.Contains(t, names, "xcatalog.categories")
	})

	t.Run("injected observer wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.Enabled = true
		a, err := New(cfg, WithRedisClient(redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})),
			WithLogger(xlog.Discard()), WithObserver(xmetrics.NoopObserver{}))
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = a.Redis.Close()
			_ = a.Close()
		})
		assert.IsType(t, xmetrics.NoopObserver{}, a.Observer)
	})
}

func TestAppCatalogRoundTrip(t *testing.T) {
	a := newTestApp(t, DefaultConfig())
	ctx := context.Background()

	day := time.Now().UTC().AddDate(0, 0, 3).Format(xevent.DateLayout)
	created, err := a.Catalog.CreateEvent(ctx, xevent.Event{
		Title:        "Go meetup",
		Category:     "Tech",
		Date:         day,
		Time:         "18:00",
		OrganizerID:  "org-1",
		MaxAttendees: 20,
	})
	require.NoError(t, err)

	events, err := a.Catalog.UpcomingEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
	assert.True(t, a.Cache.Has("events"))
}

func TestNewBuildsOwnRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Log.Level = "error"
	cfg.Redis.Addrs = []string{mr.Addr()}
	cfg.Log.File = filepath.Join(t.TempDir(), "eventkit.log")

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Redis.Ping(context.Background()).Err())
	require.NoError(t, a.Close())
	// 重复关闭是安全的
	require.NoError(t, a.Close())
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.SweepInterval = 10 * time.Millisecond
	cfg.Cache.StatsInterval = 10 * time.Millisecond
	a := newTestApp(t, cfg)

	a.Cache.SetWithTTL("stale", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, nil, xrun.WithoutSignalHandler()) }()

	assert.Eventually(t, func() bool { return a.Cache.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, err == nil || errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeReloadsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	cfg, src, err := LoadConfig(path)
	require.NoError(t, err)

	a := newTestApp(t, cfg)
	require.Equal(t, xlog.LevelInfo, a.Logger.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, src, xrun.WithoutSignalHandler()) }()
	defer func() {
		cancel()
		<-done
	}()

	// 等待监视器就绪后再修改文件
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600)
		return a.Logger.GetLevel() == xlog.LevelDebug
	}, 3*time.Second, 200*time.Millisecond)

	// 非法配置被忽略，级别保持不变
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, xlog.LevelDebug, a.Logger.GetLevel())
}

func TestOnConfigChangeError(t *testing.T) {
	a := newTestApp(t, DefaultConfig())
	a.onConfigChange(nil, xconf.ErrNotReloadable)
	assert.Equal(t, xlog.LevelInfo, a.Logger.GetLevel())
}
