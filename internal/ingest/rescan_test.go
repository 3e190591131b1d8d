package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/qiuyev/AimMirror/internal/repository"
	"github.com/qiuyev/AimMirror/internal/testutil"
)

func TestRescanSchedulerDisabledWithEmptySpec(t *testing.T) {
	s := NewRescanScheduler("", nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty spec: %v", err)
	}
	s.Stop()
}

func TestRescanSchedulerInvalidSpec(t *testing.T) {
	s := NewRescanScheduler("not a cron spec", nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRescanRunOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	tasks := repository.NewTaskRepository(db)
	runs := repository.NewRunRepository(db)
	settings := repository.NewSettingRepository(db)
	ing := NewIngestor(tasks, runs, nil, nil, nil)

	root := t.TempDir()
	writeStats(t, root, "a.csv", sampleStats)
	scanner := NewScanner(ing, root)

	s := NewRescanScheduler("@hourly", scanner, settings)
	ctx := context.Background()

	before := time.Now()
	s.runOnce(ctx)

	count, err := runs.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("Count err=%v count=%d, want 1", err, count)
	}

	cursor, err := settings.GetTime(ctx, repository.SettingLastScanAt)
	if err != nil {
		t.Fatalf("GetTime: %v", err)
	}
	if cursor.Before(before) {
		t.Errorf("cursor = %v, want advanced to scan start", cursor)
	}

	// the advanced cursor keeps the next round from re-reading the same file
	s.runOnce(ctx)
	count, _ = runs.Count(ctx)
	if count != 1 {
		t.Fatalf("count = %d after second round, want 1", count)
	}
}
