package app

import (
	"fmt"
	"time"

	"github.com/omeyang/eventkit/pkg/config/xconf"
	"github.com/omeyang/eventkit/pkg/observability/xlog"
	"github.com/omeyang/eventkit/pkg/observability/xrotate"
	"github.com/omeyang/eventkit/pkg/storage/xstore"
	"github.com/omeyang/eventkit/pkg/storage/xttl"
)

// Config 是应用配置。
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Redis   RedisConfig   `koanf:"redis"`
	Cache   CacheConfig   `koanf:"cache"`
	Catalog CatalogConfig `koanf:"catalog"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig 日志配置。File 为空时输出到标准错误。
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	AddSource  bool   `koanf:"add_source"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// RedisConfig Redis 连接配置。多个地址时使用集群客户端。
type RedisConfig struct {
	Addrs        []string      `koanf:"addrs"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	KeyPrefix    string        `koanf:"key_prefix"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// CacheConfig 进程内缓存配置。
type CacheConfig struct {
	DefaultTTL    time.Duration `koanf:"default_ttl"`
	MaxEntries    int           `koanf:"max_entries"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// StatsInterval 周期输出缓存统计日志的间隔，0 表示关闭。
	StatsInterval time.Duration `koanf:"stats_interval"`
}

// CatalogConfig 目录回源策略配置。
type CatalogConfig struct {
	RetryAttempts   uint          `koanf:"retry_attempts"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	LoadTimeout     time.Duration `koanf:"load_timeout"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// MetricsConfig 可观测性配置。
// 开启后目录操作通过 OpenTelemetry 全局 TracerProvider/MeterProvider 上报，
// 导出方式由宿主进程安装的 provider 决定。
type MetricsConfig struct {
	Enabled             bool   `koanf:"enabled"`
	InstrumentationName string `koanf:"instrumentation_name"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  xrotate.DefaultMaxSizeMB,
			MaxBackups: xrotate.DefaultMaxBackups,
			MaxAgeDays: xrotate.DefaultMaxAgeDays,
			Compress:   xrotate.DefaultCompress,
		},
		Redis: RedisConfig{
			Addrs:        []string{"localhost:6379"},
			KeyPrefix:    xstore.DefaultKeyPrefix,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Cache: CacheConfig{
			DefaultTTL:    xttl.DefaultTTL,
			SweepInterval: xttl.DefaultSweepInterval,
			StatsInterval: time.Minute,
		},
		Catalog: CatalogConfig{
			RetryAttempts:   3,
			RetryDelay:      50 * time.Millisecond,
			LoadTimeout:     5 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Metrics: MetricsConfig{
			InstrumentationName: "github.com/omeyang/eventkit",
		},
	}
}

// Validate 校验配置。
func (c Config) Validate() error {
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("%w: redis.addrs is empty", ErrInvalidConfig)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("%w: cache.default_ttl must be positive", ErrInvalidConfig)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("%w: cache.max_entries must not be negative", ErrInvalidConfig)
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("%w: cache.sweep_interval must be positive", ErrInvalidConfig)
	}
	if c.Cache.StatsInterval < 0 {
		return fmt.Errorf("%w: cache.stats_interval must not be negative", ErrInvalidConfig)
	}
	if c.Catalog.RetryAttempts == 0 {
		return fmt.Errorf("%w: catalog.retry_attempts must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig 从文件加载配置，未出现的键保留默认值。
// 返回的 xconf.Config 可用于后续监视与重载。
func LoadConfig(path string) (Config, xconf.Config, error) {
	src, err := xconf.New(path)
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := Decode(src)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, src, nil
}

// Decode 在默认配置之上解码 src 并校验。
func Decode(src xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
