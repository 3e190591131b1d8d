package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const otherStats = `Kill #,Timestamp,TTK,Shots,Hits
1,09:00:00.000,0.50s,2,1

Score,300
Scenario,Close Strafes
`

func TestScannerScanAll(t *testing.T) {
	ing, _, runs := newTestIngestor(t, nil, nil)
	root := t.TempDir()

	writeStats(t, root, "a.csv", sampleStats)
	nested := filepath.Join(root, "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeStats(t, nested, "b.CSV", otherStats)
	writeStats(t, root, "notes.txt", "not a stats file")

	scanner := NewScanner(ing, root)
	ctx := context.Background()

	stats, err := scanner.ScanAll(ctx)
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if stats.Scanned != 2 || stats.New != 2 || stats.Duplicate != 0 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 2 scanned 2 new", stats)
	}

	// second pass finds only duplicates
	stats, err = scanner.ScanAll(ctx)
	if err != nil {
		t.Fatalf("ScanAll second: %v", err)
	}
	if stats.New != 0 || stats.Duplicate != 2 {
		t.Fatalf("stats = %+v, want 2 duplicate", stats)
	}

	count, _ := runs.Count(ctx)
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestScannerScanSince(t *testing.T) {
	ing, _, _ := newTestIngestor(t, nil, nil)
	root := t.TempDir()
	ctx := context.Background()

	old := writeStats(t, root, "old.csv", sampleStats)
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeStats(t, root, "fresh.csv", otherStats)

	scanner := NewScanner(ing, root)

	// cutoff between the two modification times skips the old file
	stats, err := scanner.ScanSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ScanSince: %v", err)
	}
	if stats.Scanned != 1 || stats.New != 1 {
		t.Fatalf("stats = %+v, want 1 scanned 1 new", stats)
	}

	// zero cutoff behaves like a full scan
	stats, err = scanner.ScanSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ScanSince zero: %v", err)
	}
	if stats.Scanned != 2 {
		t.Fatalf("stats = %+v, want 2 scanned", stats)
	}
}

func TestScannerFailedFileDoesNotAbort(t *testing.T) {
	ing, _, _ := newTestIngestor(t, nil, nil)
	root := t.TempDir()
	ctx := context.Background()

	// dangling symlink: matches the extension filter but cannot be read
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken.csv")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}
	writeStats(t, root, "good.csv", sampleStats)

	scanner := NewScanner(ing, root)
	stats, err := scanner.ScanAll(ctx)
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if stats.Failed != 1 || stats.New != 1 {
		t.Fatalf("stats = %+v, want 1 failed 1 new", stats)
	}
}

func TestScannerCancelled(t *testing.T) {
	ing, _, _ := newTestIngestor(t, nil, nil)
	root := t.TempDir()
	writeStats(t, root, "a.csv", sampleStats)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(ing, root)
	if _, err := scanner.ScanAll(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestIsStatsFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.csv", true},
		{"A.CSV", true},
		{"dir/b.Csv", true},
		{"a.txt", false},
		{"a.csv.bak", false},
		{"csv", false},
	}
	for _, c := range cases {
		if got := IsStatsFile(c.path); got != c.want {
			t.Errorf("IsStatsFile(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
