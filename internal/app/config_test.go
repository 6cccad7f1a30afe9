package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/eventkit/pkg/config/xconf"
	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, xttl.TTLMedium, cfg.Cache.DefaultTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SweepInterval)
	assert.Zero(t, cfg.Cache.MaxEntries)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"localhost:6379"}, cfg.Redis.Addrs)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"no redis addrs", func(c *Config) { c.Redis.Addrs = nil }},
		{"zero ttl", func(c *Config) { c.Cache.DefaultTTL = 0 }},
		{"negative max entries", func(c *Config) { c.Cache.MaxEntries = -1 }},
		{"zero sweep interval", func(c *Config) { c.Cache.SweepInterval = 0 }},
		{"negative stats interval", func(c *Config) { c.Cache.StatsInterval = -time.Second }},
		{"zero retry attempts", func(c *Config) { c.Catalog.RetryAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
redis:
  addrs: ["10.0.0.1:6379", "10.0.0.2:6379"]
  key_prefix: "test:"
cache:
  default_ttl: 2m
  max_entries: 500
  sweep_interval: 30s
catalog:
  retry_attempts: 5
metrics:
  enabled: true
`), 0o600))

	cfg, src, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"10.0.0.1:6379", "10.0.0.2:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, "test:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 2*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Second, cfg.Cache.SweepInterval)
	assert.Equal(t, uint(5), cfg.Catalog.RetryAttempts)
	assert.True(t, cfg.Metrics.Enabled)

	// 未出现的键保留默认值
	def := DefaultConfig()
	assert.Equal(t, def.Cache.StatsInterval, cfg.Cache.StatsInterval)
	assert.Equal(t, def.Catalog.BreakerTimeout, cfg.Catalog.BreakerTimeout)
	assert.Equal(t, def.Redis.DialTimeout, cfg.Redis.DialTimeout)
	assert.Equal(t, def.Metrics.InstrumentationName, cfg.Metrics.InstrumentationName)
}

func TestLoadConfigErrors(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	src, err := xconf.NewFromBytes([]byte(`{"cache": {"default_ttl": "0s"}}`), xconf.FormatJSON)
	require.NoError(t, err)
	_, err = Decode(src)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
