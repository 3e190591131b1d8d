package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/qiuyev/AimMirror/internal/repository"
)

// WatcherConfig 监控器配置
type WatcherConfig struct {
	Root         string
	StableWindow time.Duration // 写入稳定窗口：大小/修改时间静默该时长后才视为写完
	PollInterval time.Duration // 稳定性轮询间隔
	MaxDepth     int           // 递归监控的最大目录深度（相对根目录）
}

// DefaultWatcherConfig 默认配置
func DefaultWatcherConfig(root string) *WatcherConfig {
	return &WatcherConfig{
		Root:         root,
		StableWindow: 2 * time.Second,
		PollInterval: 500 * time.Millisecond,
		MaxDepth:     5,
	}
}

// pendingFile 在途文件的稳定性观察状态
type pendingFile struct {
	size     int64
	modTime  time.Time
	lastSeen time.Time // 最近一次观察到变化的时刻
}

// Watcher 实时文件监控器。
// 每个在途文件经历 Debouncing（观察中）→ Stabilized（静默窗口走完）→ Ingesting：
// 收到新增/写入事件后先进入 pending 表，轮询观察其大小与修改时间，
// 静默满一个窗口才认为生产方写完、交给摄取引擎。
// 这样可以容忍非原子写入的导出过程，避免读到半截文件。
type Watcher struct {
	cfg      *WatcherConfig
	ing      *Ingestor
	settings *repository.SettingRepository
	watcher  *fsnotify.Watcher

	pending  map[string]*pendingFile
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// NewWatcher 创建监控器
func NewWatcher(cfg *WatcherConfig, ing *Ingestor, settings *repository.SettingRepository) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}
	if cfg.StableWindow <= 0 {
		cfg.StableWindow = 2 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		ing:      ing,
		settings: settings,
		watcher:  fsw,
		pending:  make(map[string]*pendingFile),
		stopChan: make(chan struct{}),
	}, nil
}

// Start 启动监控
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addWatchTree(w.cfg.Root); err != nil {
		return err
	}

	slog.Info("文件监控器启动",
		"root", w.cfg.Root,
		"stable_window", w.cfg.StableWindow,
		"max_depth", w.cfg.MaxDepth,
	)

	go w.watchLoop(ctx)
	go w.stabilizeLoop(ctx)
	return nil
}

// Stop 停止监控（线程安全，可重复调用）
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()
		slog.Info("文件监控器已停止")
	})
	return nil
}

// addWatchTree 递归注册 root 下的目录（深度受限，跳过隐藏目录）
func (w *Watcher) addWatchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("注册监控目录失败", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if w.depth(path) > w.cfg.MaxDepth {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			slog.Warn("添加监控目录失败", "path", path, "error", err)
		} else {
			slog.Debug("添加监控目录", "path", path)
		}
		return nil
	})
}

// depth 计算目录相对根目录的嵌套深度
func (w *Watcher) depth(path string) int {
	rel, err := filepath.Rel(w.cfg.Root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// watchLoop 事件循环
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// 监控级错误不终止订阅
			slog.Error("文件监控错误", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// 新建子目录动态纳入监控
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.depth(event.Name) <= w.cfg.MaxDepth {
				_ = w.addWatchTree(event.Name)
			}
			return
		}
	}

	if !IsStatsFile(event.Name) {
		return
	}
	w.markPending(event.Name)
}

// markPending 把文件放入/刷新在途观察表
func (w *Watcher) markPending(path string) {
	now := time.Now()
	pf := &pendingFile{lastSeen: now}
	if info, err := os.Stat(path); err == nil {
		pf.size = info.Size()
		pf.modTime = info.ModTime()
	}

	w.mu.Lock()
	w.pending[path] = pf
	w.mu.Unlock()
	slog.Debug("文件进入稳定观察", "path", path)
}

// stabilizeLoop 稳定性轮询循环：静默满窗口的文件交给摄取引擎
func (w *Watcher) stabilizeLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			for _, path := range w.stabilized() {
				w.ingest(ctx, path)
			}
		}
	}
}

// stabilized 推进所有在途文件的观察状态，返回已稳定的文件
func (w *Watcher) stabilized() []string {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	defer w.mu.Unlock()

	for path, pf := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			// 文件在稳定前消失（被移走/删除），放弃
			slog.Debug("在途文件已消失", "path", path, "error", err)
			delete(w.pending, path)
			continue
		}
		if info.Size() != pf.size || !info.ModTime().Equal(pf.modTime) {
			pf.size = info.Size()
			pf.modTime = info.ModTime()
			pf.lastSeen = now
			continue
		}
		if now.Sub(pf.lastSeen) >= w.cfg.StableWindow {
			delete(w.pending, path)
			ready = append(ready, path)
		}
	}
	return ready
}

// ingest 摄取已稳定的文件；新插入时前移扫描游标并由引擎发布通知
func (w *Watcher) ingest(ctx context.Context, path string) {
	res, err := w.ing.IngestFile(ctx, path)
	if err != nil {
		// 单文件失败不终止监控会话
		slog.Warn("监控摄取失败", "path", path, "error", err)
		return
	}

	if res.IsNew && w.settings != nil {
		// 游标前移到当下，后续增量扫描不会再检查这个文件
		if err := w.settings.AdvanceTime(ctx, repository.SettingLastScanAt, time.Now()); err != nil {
			slog.Warn("前移扫描游标失败", "error", err)
		}
	}
}
