package xconf

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_RejectsBytesConfig(t *testing.T) {
	cfg, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)

	_, err = Watch(cfg, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
	_, err = Watch(nil, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n")
	cfg, err := New(path)
	require.NoError(t, err)

	var reloads atomic.Int32
	w, err := Watch(cfg, func(c Config, err error) {
		if err == nil && c.Client().String("log.level") == "debug" {
			reloads.Add(1)
		}
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	assert.Eventually(t, func() bool { return reloads.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
