package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qiuyev/AimMirror/internal/repository"
	"github.com/robfig/cron/v3"
)

// RescanScheduler 周期性增量补扫。
// 某些写入方式（网络盘、部分同步工具）不产生文件系统事件，
// 定时以扫描游标为界补扫一轮可以兜住这类文件。cron 表达式为空时禁用。
type RescanScheduler struct {
	spec     string
	scanner  *Scanner
	settings *repository.SettingRepository
	cron     *cron.Cron
}

// NewRescanScheduler 创建补扫调度器
func NewRescanScheduler(spec string, scanner *Scanner, settings *repository.SettingRepository) *RescanScheduler {
	return &RescanScheduler{
		spec:     spec,
		scanner:  scanner,
		settings: settings,
		cron:     cron.New(),
	}
}

// Start 启动调度
func (s *RescanScheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		slog.Info("周期补扫未启用")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("无效的 cron 表达式 %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("周期补扫启动", "cron", s.spec)
	return nil
}

// Stop 停止调度（不打断进行中的扫描）
func (s *RescanScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// runOnce 执行一轮增量补扫并前移游标
func (s *RescanScheduler) runOnce(ctx context.Context) {
	cutoff, err := s.settings.GetTime(ctx, repository.SettingLastScanAt)
	if err != nil {
		slog.Warn("读取扫描游标失败", "error", err)
		return
	}

	start := time.Now()
	stats, err := s.scanner.ScanSince(ctx, cutoff)
	if err != nil {
		slog.Warn("周期补扫失败", "error", err)
		return
	}

	// 游标只在整轮扫描完成后前移，且以扫描开始时刻为界，
	// 扫描期间写入的文件会落入下一轮
	if err := s.settings.AdvanceTime(ctx, repository.SettingLastScanAt, start); err != nil {
		slog.Warn("前移扫描游标失败", "error", err)
		return
	}

	slog.Debug("周期补扫完成", "new", stats.New, "duplicate", stats.Duplicate, "failed", stats.Failed)
}
