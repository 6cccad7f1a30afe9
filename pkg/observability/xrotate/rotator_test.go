package xrotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_EmptyFilename(t *testing.T) {
	_, err := NewLumberjack("")
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestNewLumberjack_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.log")

	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"zero size", []Option{WithMaxSize(0)}, ErrInvalidMaxSize},
		{"huge size", []Option{WithMaxSize(maxSizeMB + 1)}, ErrInvalidMaxSize},
		{"negative backups", []Option{WithMaxBackups(-1)}, ErrInvalidMaxBackups},
		{"negative age", []Option{WithMaxAge(-1)}, ErrInvalidMaxAge},
		{"no cleanup", []Option{WithMaxBackups(0), WithMaxAge(0)}, ErrNoCleanupPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLumberjack(name, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLumberjack_WriteCreatesFileInNewDir(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "nested", "app.log")

	r, err := NewLumberjack(name, WithCompress(false))
	require.NoError(t, err)

	n, err := r.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestLumberjack_ClosedRejectsWrites(t *testing.T) {
	r, err := NewLumberjack(filepath.Join(t.TempDir(), "app.log"))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
}

func TestLumberjack_RotateKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.log")

	r, err := NewLumberjack(name, WithCompress(false))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte("before\n"))
	require.NoError(t, err)
	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("after\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
