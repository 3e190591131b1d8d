package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qiuyev/AimMirror/internal/bootstrap"
	"github.com/qiuyev/AimMirror/internal/ingest"
	"github.com/qiuyev/AimMirror/internal/pkg/config"
	"github.com/qiuyev/AimMirror/internal/repository"
)

// logGoalTracker 目标进度协作方的占位实现：只记录日志
type logGoalTracker struct{}

func (logGoalTracker) OnNewRun(_ context.Context, taskName string, m ingest.RunMetrics) {
	attrs := []any{"task", taskName}
	if m.Score != nil {
		attrs = append(attrs, "score", *m.Score)
	}
	if m.Accuracy != nil {
		attrs = append(attrs, "accuracy", *m.Accuracy)
	}
	slog.Debug("通知目标进度", attrs...)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath, cfgErr := config.DefaultConfigPath()
	if cfgErr == nil {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			_ = config.WriteFile(cfgPath, config.Default())
		}
	}

	core, err := bootstrap.NewCore(cfgPath, logGoalTracker{})
	if err != nil {
		slog.Error("启动 Agent 失败", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	slog.Info("AimMirror Agent 启动中...", "name", core.Cfg.App.Name, "version", core.Cfg.App.Version)
	if core.DB.SafeMode {
		slog.Warn("数据库处于安全模式，仅提供只读诊断", "error", core.DB.MigrationError)
	}

	// 启动扫描：首次全量，之后以扫描游标为界增量
	runStartupScan(ctx, core)

	if err := core.Ingest.Watcher.Start(ctx); err != nil {
		slog.Error("启动文件监控失败", "error", err)
		os.Exit(1)
	}
	if err := core.Ingest.Rescan.Start(ctx); err != nil {
		slog.Error("启动周期补扫失败", "error", err)
	}

	var metricsServer *http.Server
	if core.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", core.Metrics.Handler())
		metricsServer = &http.Server{Addr: core.Cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			slog.Info("指标服务启动", "addr", core.Cfg.Metrics.ListenAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("指标服务异常退出", "error", err)
			}
		}()
	}

	slog.Info("AimMirror Agent 已启动", "stats_dir", core.Cfg.Ingest.StatsDir)

	// 等待系统退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("正在关闭...")
	cancel()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	slog.Info("AimMirror Agent 已退出")
}

// runStartupScan 执行启动扫描并推进持久化状态。
// 游标取扫描开始时刻：扫描期间写入的文件由监控或下一轮补扫接住。
func runStartupScan(ctx context.Context, core *bootstrap.Core) {
	settings := core.Repos.Setting
	start := time.Now()

	initialDone, err := settings.GetBool(ctx, repository.SettingInitialScanComplete, false)
	if err != nil {
		slog.Warn("读取扫描状态失败", "error", err)
	}

	if !initialDone {
		slog.Info("首次启动，执行全量扫描", "root", core.Cfg.Ingest.StatsDir)
		if _, err := core.Ingest.Scanner.ScanAll(ctx); err != nil {
			slog.Error("全量扫描失败", "error", err)
			return
		}
		if err := settings.SetBool(ctx, repository.SettingInitialScanComplete, true); err != nil {
			slog.Warn("写入扫描状态失败", "error", err)
		}
	} else {
		cutoff, err := settings.GetTime(ctx, repository.SettingLastScanAt)
		if err != nil {
			slog.Warn("读取扫描游标失败", "error", err)
		}
		slog.Info("执行增量扫描", "root", core.Cfg.Ingest.StatsDir, "cutoff", cutoff)
		if _, err := core.Ingest.Scanner.ScanSince(ctx, cutoff); err != nil {
			slog.Error("增量扫描失败", "error", err)
			return
		}
	}

	if err := settings.AdvanceTime(ctx, repository.SettingLastScanAt, start); err != nil {
		slog.Warn("前移扫描游标失败", "error", err)
	}
}
