package player

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestMergeHistory_FreshNameCreatesSingleEntry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	got := MergeHistory(nil, strPtr("Steve"), now)
	want := NameHistory{{Name: "Steve", DetectedAt: now.UnixMilli()}}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("MergeHistory = %v, want %v", got, want)
	}
}

func TestMergeHistory_ExistingHistoryIsAuthoritative(t *testing.T) {
	existing := NameHistory{{Name: "Steve", DetectedAt: 1700000000000}}

	// Even a conflicting fresh name leaves the recorded history unchanged.
	got := MergeHistory(existing, strPtr("Alex"), time.Now())
	if len(got) != 1 || got[0].Name != "Steve" {
		t.Errorf("MergeHistory = %v, want unchanged existing history", got)
	}
	if got.Current() != "Steve" {
		t.Errorf("Current() = %q, want Steve", got.Current())
	}
}

func TestMergeHistory_Idempotent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := MergeHistory(nil, strPtr("Steve"), now)
	second := MergeHistory(first, strPtr("Steve"), now.Add(time.Hour))
	if len(second) != 1 || second[0] != first[0] {
		t.Errorf("re-merge = %v, want %v", second, first)
	}
}

func TestMergeHistory_NothingToMerge(t *testing.T) {
	if got := MergeHistory(nil, nil, time.Now()); got != nil {
		t.Errorf("MergeHistory(nil, nil) = %v, want nil", got)
	}
	if got := MergeHistory(nil, strPtr(""), time.Now()); got != nil {
		t.Errorf("MergeHistory(nil, empty) = %v, want nil", got)
	}
}

func TestCurrent_Empty(t *testing.T) {
	var h NameHistory
	if got := h.Current(); got != "" {
		t.Errorf("Current() = %q, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	h := NameHistory{
		{Name: "Steve", DetectedAt: 1},
		{Name: "Steve", DetectedAt: 2},
		{Name: "Alex", DetectedAt: 3},
		{Name: "Alex", DetectedAt: 4},
		{Name: "Steve", DetectedAt: 5},
	}

	got := h.Normalize()
	if len(got) != 3 {
		t.Fatalf("Normalize len = %d, want 3", len(got))
	}
	if got[0].Name != "Steve" || got[1].Name != "Alex" || got[2].Name != "Steve" {
		t.Errorf("Normalize = %v", got)
	}
}

func TestNormalize_ShortHistories(t *testing.T) {
	if got := NameHistory(nil).Normalize(); got != nil {
		t.Errorf("Normalize(nil) = %v", got)
	}
	one := NameHistory{{Name: "Steve", DetectedAt: 1}}
	if got := one.Normalize(); len(got) != 1 {
		t.Errorf("Normalize(one) = %v", got)
	}
}
