package repository

import (
	"context"
	"testing"
	"time"

	"github.com/qiuyev/AimMirror/internal/testutil"
)

func TestSettingRepositoryStringRoundTrip(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	got, err := repo.GetString(ctx, "missing", "fallback")
	if err != nil || got != "fallback" {
		t.Fatalf("GetString default err=%v got=%q", err, got)
	}

	if err := repo.SetString(ctx, "k", "v1"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := repo.SetString(ctx, "k", "v2"); err != nil {
		t.Fatalf("SetString overwrite: %v", err)
	}
	got, err = repo.GetString(ctx, "k", "")
	if err != nil || got != "v2" {
		t.Fatalf("GetString err=%v got=%q, want v2", err, got)
	}
}

func TestSettingRepositoryBool(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	got, err := repo.GetBool(ctx, SettingInitialScanComplete, false)
	if err != nil || got {
		t.Fatalf("GetBool default err=%v got=%v", err, got)
	}

	if err := repo.SetBool(ctx, SettingInitialScanComplete, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	got, err = repo.GetBool(ctx, SettingInitialScanComplete, false)
	if err != nil || !got {
		t.Fatalf("GetBool err=%v got=%v, want true", err, got)
	}
}

func TestSettingRepositoryAdvanceTime(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	t1 := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	if err := repo.AdvanceTime(ctx, SettingLastScanAt, t1); err != nil {
		t.Fatalf("AdvanceTime t1: %v", err)
	}

	// the cursor only moves forward
	earlier := t1.Add(-time.Hour)
	if err := repo.AdvanceTime(ctx, SettingLastScanAt, earlier); err != nil {
		t.Fatalf("AdvanceTime earlier: %v", err)
	}
	got, err := repo.GetTime(ctx, SettingLastScanAt)
	if err != nil {
		t.Fatalf("GetTime: %v", err)
	}
	if !got.Equal(t1) {
		t.Errorf("cursor moved backwards: got %v, want %v", got, t1)
	}

	t2 := t1.Add(time.Hour)
	if err := repo.AdvanceTime(ctx, SettingLastScanAt, t2); err != nil {
		t.Fatalf("AdvanceTime t2: %v", err)
	}
	got, _ = repo.GetTime(ctx, SettingLastScanAt)
	if !got.Equal(t2) {
		t.Errorf("cursor did not advance: got %v, want %v", got, t2)
	}
}

func TestSettingRepositoryGetTimeUnparseable(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	if err := repo.SetString(ctx, SettingLastScanAt, "not a time"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, err := repo.GetTime(ctx, SettingLastScanAt)
	if err != nil {
		t.Fatalf("GetTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time for unparseable value, got %v", got)
	}
}
