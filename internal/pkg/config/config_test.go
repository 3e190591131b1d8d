package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// no config file anywhere on the search path, everything comes from defaults
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "aim-agent" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.Ingest.StableSec != 2 || cfg.Ingest.PollMs != 500 || cfg.Ingest.WatchDepth != 5 {
		t.Errorf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `app:
  log_level: debug
ingest:
  stats_dir: /stats/exports
  stable_sec: 5
  rescan_cron: "@hourly"
storage:
  db_path: /data/test.db
metrics:
  enabled: true
  listen_addr: 127.0.0.1:9999
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.App.LogLevel)
	}
	if cfg.Ingest.StatsDir != "/stats/exports" || cfg.Ingest.StableSec != 5 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if cfg.Ingest.RescanCron != "@hourly" {
		t.Errorf("RescanCron = %q", cfg.Ingest.RescanCron)
	}
	if cfg.Storage.DBPath != "/data/test.db" {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")

	def := Default()
	def.Ingest.StatsDir = "/stats"
	def.Storage.DBPath = "/data/aim.db"
	if err := WriteFile(path, def); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ingest.StatsDir != "/stats" || cfg.Storage.DBPath != "/data/aim.db" {
		t.Errorf("round trip mismatch: %+v", cfg)
	}
	if cfg.App.Name != def.App.Name {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, def.App.Name)
	}
}
