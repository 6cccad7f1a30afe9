package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheSection struct {
	DefaultTTL    time.Duration `koanf:"default_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	MaxEntries    int           `koanf:"max_entries"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew_Errors(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New("config.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	path := writeFile(t, "bad.json", "{not json")
	_, err = New(path)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNew_YAMLUnmarshalKeepsDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "cache:\n  default_ttl: 2m\n  max_entries: 100\n")
	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, cfg.Format())
	assert.Equal(t, path, cfg.Path())

	section := cacheSection{SweepInterval: 10 * time.Minute}
	require.NoError(t, cfg.Unmarshal("cache", &section))
	assert.Equal(t, 2*time.Minute, section.DefaultTTL)
	assert.Equal(t, 100, section.MaxEntries)
	assert.Equal(t, 10*time.Minute, section.SweepInterval)
	assert.Equal(t, 100, cfg.Client().Int("cache.max_entries"))
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"cache":{"max_entries":5}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Client().Int("cache.max_entries"))
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	var section cacheSection
	require.NoError(t, empty.Unmarshal("cache", &section))
	assert.Zero(t, section.MaxEntries)

	_, err = NewFromBytes([]byte("x"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReload_KeepsOldConfigOnParseError(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n")
	cfg, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	require.NoError(t, cfg.Reload())
	assert.Equal(t, "debug", cfg.Client().String("log.level"))

	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o600))
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, "debug", cfg.Client().String("log.level"))
}

func TestWithDelim(t *testing.T) {
	cfg, err := NewFromBytes([]byte("a:\n  b: 1\n"), FormatYAML, WithDelim("/"), WithTag(""))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Client().Int("a/b"))
}
