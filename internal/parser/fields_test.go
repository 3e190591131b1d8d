package parser

import "testing"

func TestResolveFieldsExactMatch(t *testing.T) {
	resolved := ResolveFields(map[string]string{
		"Score":    "850",
		"Accuracy": "87.5",
		"Shots":    "120",
	})

	if resolved[FieldScore] != "850" {
		t.Errorf("FieldScore = %q, want 850", resolved[FieldScore])
	}
	if resolved[FieldAccuracy] != "87.5" {
		t.Errorf("FieldAccuracy = %q, want 87.5", resolved[FieldAccuracy])
	}
	if resolved[FieldShots] != "120" {
		t.Errorf("FieldShots = %q, want 120", resolved[FieldShots])
	}
}

func TestResolveFieldsExactBeatsSubstring(t *testing.T) {
	// the decorated key must not displace the exact one
	resolved := ResolveFields(map[string]string{
		"Accuracy":          "50",
		"Weapon Accuracy %": "99",
	})

	if resolved[FieldAccuracy] != "50" {
		t.Errorf("FieldAccuracy = %q, want exact match 50", resolved[FieldAccuracy])
	}
}

func TestResolveFieldsSubstringFallback(t *testing.T) {
	resolved := ResolveFields(map[string]string{
		"Total Shots Fired": "100",
		"Weapon Accuracy":   "55%",
	})

	if resolved[FieldShots] != "100" {
		t.Errorf("FieldShots = %q, want substring match 100", resolved[FieldShots])
	}
	if resolved[FieldAccuracy] != "55%" {
		t.Errorf("FieldAccuracy = %q, want substring match 55%%", resolved[FieldAccuracy])
	}
}

func TestResolveFieldsOvershotsNotClaimedByShots(t *testing.T) {
	resolved := ResolveFields(map[string]string{
		"Overshots": "3",
		"Shots":     "120",
	})

	if resolved[FieldOvershots] != "3" {
		t.Errorf("FieldOvershots = %q, want 3", resolved[FieldOvershots])
	}
	if resolved[FieldShots] != "120" {
		t.Errorf("FieldShots = %q, want 120", resolved[FieldShots])
	}
}

func TestResolveFieldsClaimedKeyNotReused(t *testing.T) {
	// "Sens Scale" matches FieldSens exactly; the substring pass must not
	// hand the same key to another field
	resolved := ResolveFields(map[string]string{
		"Sens Scale": "0.35",
	})

	if resolved[FieldSens] != "0.35" {
		t.Errorf("FieldSens = %q, want 0.35", resolved[FieldSens])
	}
	if len(resolved) != 1 {
		t.Errorf("resolved %d fields, want 1: %v", len(resolved), resolved)
	}
}

func TestResolveFieldsCaseInsensitive(t *testing.T) {
	resolved := ResolveFields(map[string]string{
		"SCORE":     "12",
		"  Misses ": "4",
	})

	if resolved[FieldScore] != "12" {
		t.Errorf("FieldScore = %q, want 12", resolved[FieldScore])
	}
	if resolved[FieldMisses] != "4" {
		t.Errorf("FieldMisses = %q, want 4", resolved[FieldMisses])
	}
}
