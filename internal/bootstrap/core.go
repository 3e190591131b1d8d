package bootstrap

import (
	"time"

	"github.com/qiuyev/AimMirror/internal/eventbus"
	"github.com/qiuyev/AimMirror/internal/ingest"
	"github.com/qiuyev/AimMirror/internal/pkg/config"
	"github.com/qiuyev/AimMirror/internal/pkg/metrics"
	"github.com/qiuyev/AimMirror/internal/repository"
)

// Core 持有跨组件共享的核心依赖
type Core struct {
	Cfg     *config.Config
	DB      *repository.Database
	Hub     *eventbus.Hub
	Metrics *metrics.Metrics // 未启用时为 nil

	Repos struct {
		Task    *repository.TaskRepository
		Run     *repository.RunRepository
		Setting *repository.SettingRepository
	}

	Ingest struct {
		Ingestor *ingest.Ingestor
		Scanner  *ingest.Scanner
		Watcher  *ingest.Watcher
		Rescan   *ingest.RescanScheduler
	}
}

// NewCore 构建核心依赖（不启动扫描与监控）。
// goals 为目标进度协作方，可传 nil。
func NewCore(cfgPath string, goals ingest.GoalTracker) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db, Hub: eventbus.NewHub()}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}

	// Repos
	c.Repos.Task = repository.NewTaskRepository(db.DB)
	c.Repos.Run = repository.NewRunRepository(db.DB)
	c.Repos.Setting = repository.NewSettingRepository(db.DB)

	// 摄取管线
	c.Ingest.Ingestor = ingest.NewIngestor(c.Repos.Task, c.Repos.Run, goals, c.Hub, c.Metrics)
	c.Ingest.Scanner = ingest.NewScanner(c.Ingest.Ingestor, cfg.Ingest.StatsDir)

	watcher, err := ingest.NewWatcher(&ingest.WatcherConfig{
		Root:         cfg.Ingest.StatsDir,
		StableWindow: time.Duration(cfg.Ingest.StableSec) * time.Second,
		PollInterval: time.Duration(cfg.Ingest.PollMs) * time.Millisecond,
		MaxDepth:     cfg.Ingest.WatchDepth,
	}, c.Ingest.Ingestor, c.Repos.Setting)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.Ingest.Watcher = watcher
	c.Ingest.Rescan = ingest.NewRescanScheduler(cfg.Ingest.RescanCron, c.Ingest.Scanner, c.Repos.Setting)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	if c.Ingest.Rescan != nil {
		c.Ingest.Rescan.Stop()
	}
	if c.Ingest.Watcher != nil {
		_ = c.Ingest.Watcher.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
