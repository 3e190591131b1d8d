package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/qiuyev/AimMirror/internal/eventbus"
	"github.com/qiuyev/AimMirror/internal/parser"
	"github.com/qiuyev/AimMirror/internal/pkg/metrics"
	"github.com/qiuyev/AimMirror/internal/repository"
	"github.com/qiuyev/AimMirror/internal/schema"
)

// RunMetrics 新成绩入库时通知协作方的关键指标
type RunMetrics struct {
	Accuracy *float64
	Score    *float64
	Duration *float64
	PlayedAt *time.Time
}

// GoalTracker 目标进度协作方。
// 目标逻辑本身在本核心之外，这里只定义出站边界。
type GoalTracker interface {
	OnNewRun(ctx context.Context, taskName string, m RunMetrics)
}

// Result 单文件摄取结果
type Result struct {
	IsNew  bool // 本次新插入
	Exists bool // 哈希已存在（重复内容，正常结果而非错误）
}

// Ingestor 摄取引擎：读文件 → 哈希 → 提取 → 归一化 → 入库 → 通知。
// 去重的唯一性由存储层的哈希唯一索引保证，因此并发调用
//（扫描与监控同时触到同一文件）也只会产生一次副作用。
type Ingestor struct {
	tasks   *repository.TaskRepository
	runs    *repository.RunRepository
	goals   GoalTracker      // 可为 nil
	hub     *eventbus.Hub    // 可为 nil
	metrics *metrics.Metrics // 可为 nil
}

// NewIngestor 创建摄取引擎
func NewIngestor(
	tasks *repository.TaskRepository,
	runs *repository.RunRepository,
	goals GoalTracker,
	hub *eventbus.Hub,
	m *metrics.Metrics,
) *Ingestor {
	return &Ingestor{tasks: tasks, runs: runs, goals: goals, hub: hub, metrics: m}
}

// IngestFile 摄取单个文件。
// 重复内容（哈希已存在）返回 {IsNew:false, Exists:true} 且不触发任何副作用。
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		ing.metrics.FileFailed()
		return Result{}, fmt.Errorf("读取文件失败: %w", err)
	}
	ing.metrics.FileScanned()

	fileName := filepath.Base(path)
	hash := HashContent(content)
	raw := parser.ExtractRun(content, fileName)

	// 场景名缺失时从文件名回退，归一化后作为任务分组键
	scenario := raw.Scenario
	if scenario == "" {
		scenario = parser.ScenarioFromFileName(fileName)
	}
	taskName := parser.NormalizeTaskName(scenario)
	if taskName == "" {
		taskName = "Unknown"
	}

	task, err := ing.tasks.FindOrCreate(ctx, taskName)
	if err != nil {
		ing.metrics.FileFailed()
		return Result{}, err
	}

	run := schema.Run{
		TaskID:      task.ID,
		ContentHash: hash,
		FilePath:    path,
		FileName:    fileName,
		Scenario:    scenario,
		PlayedAt:    raw.PlayedAt,
		Score:       raw.Score,
		Hits:        raw.Hits,
		Misses:      raw.Misses,
		Shots:       raw.Shots,
		Kills:       raw.Kills,
		Accuracy:    raw.Accuracy,
		AvgTTK:      raw.AvgTTK,
		Overshots:   raw.Overshots,
		Reloads:     raw.Reloads,
		AvgFPS:      raw.AvgFPS,
		Duration:    raw.Duration,
		SPM:         raw.SPM,
		DPI:         raw.DPI,
		Sens:        raw.Sens,
		FOV:         raw.FOV,
	}

	inserted, err := ing.runs.InsertIfAbsent(ctx, &run)
	ing.metrics.ObserveIngest(time.Since(start))
	if err != nil {
		ing.metrics.FileFailed()
		return Result{}, err
	}

	if !inserted {
		ing.metrics.RunDuplicate()
		slog.Debug("重复内容，跳过", "file", fileName, "hash", hash)
		return Result{IsNew: false, Exists: true}, nil
	}

	ing.metrics.RunNew()
	slog.Info("新成绩入库", "task", taskName, "file", fileName)

	// 副作用只在新插入时触发
	if ing.goals != nil {
		ing.goals.OnNewRun(ctx, taskName, RunMetrics{
			Accuracy: raw.Accuracy,
			Score:    raw.Score,
			Duration: raw.Duration,
			PlayedAt: raw.PlayedAt,
		})
	}
	ing.hub.PublishNewRun(taskName, run.ID, hash)

	return Result{IsNew: true, Exists: false}, nil
}
