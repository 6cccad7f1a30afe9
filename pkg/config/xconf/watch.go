package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 配置变更回调，err 表示重载或监视是否失败
type WatchCallback func(cfg Config, err error)

// WatchOption 监视器配置选项
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间，窗口内的多次变更只触发一次重载。非正值忽略。
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 配置文件监视器
type Watcher struct {
	cfg      Config
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// Watch 创建配置文件监视器。
//
// 监视的是配置文件所在目录而非文件本身：编辑器保存时常先删除再创建，
// 直接监视文件会丢失后续事件。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.Path() == "" {
		return nil, ErrNotReloadable
	}

	w := &Watcher{
		cfg:      cfg,
		callback: callback,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.Path())
	if err := fsWatcher.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fsWatcher.Close())
	}
	w.watcher = fsWatcher
	return w, nil
}

// Run 运行监视循环，阻塞直到 ctx 取消，返回时释放 fsnotify 资源。
// ctx 取消属于正常退出，返回 nil。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	filename := filepath.Base(w.cfg.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			// Rename 对应 vim 等编辑器的原子写入
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.notify(fmt.Errorf("xconf: watch error: %w", err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.notify(w.cfg.Reload())
	})
}

func (w *Watcher) notify(err error) {
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}
