package precisionbloom

import (
	"strings"
	"testing"
)

func newTestTracker(t *testing.T, n uint, p float64) *AccuracyTracker {
	t.Helper()
	params, err := NewParametersFromItemCount(n, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewAccuracyTracker(params)
}

func TestTrackerCounters(t *testing.T) {
	tracker := newTestTracker(t, 100, 0.01)
	for i := 0; i < 5; i++ {
		tracker.RecordInsert()
	}
	tracker.RecordQuery()
	tracker.RecordQuery()
	if tracker.ItemsInserted() != 5 {
		t.Errorf("items inserted should be 5, got %v", tracker.ItemsInserted())
	}
	if tracker.QueriesPerformed() != 2 {
		t.Errorf("queries performed should be 2, got %v", tracker.QueriesPerformed())
	}
	if tracker.FillRatio() != 0.05 {
		t.Errorf("fill ratio should be 0.05, got %v", tracker.FillRatio())
	}
}

func TestTrackerActualRate(t *testing.T) {
	tracker := newTestTracker(t, 100, 0.01)
	if tracker.ActualFalsePositiveRate() != 0 {
		t.Fatalf("empty tracker should report rate 0, got %v", tracker.ActualFalsePositiveRate())
	}
	for i := 0; i < 100; i++ {
		tracker.RecordInsert()
	}
	expected := tracker.Parameters().ActualFalsePositiveRate(100)
	if tracker.ActualFalsePositiveRate() != expected {
		t.Errorf("actual rate should be %v, got %v", expected, tracker.ActualFalsePositiveRate())
	}
	if tracker.TheoreticalFalsePositiveRate() != 0.01 {
		t.Errorf("theoretical rate should be 0.01, got %v", tracker.TheoreticalFalsePositiveRate())
	}
}

func TestTrackerOverfill(t *testing.T) {
	tracker := newTestTracker(t, 10, 0.01)
	for i := 0; i < 10; i++ {
		tracker.RecordInsert()
	}
	if tracker.IsOverfilled() {
		t.Fatal("tracker at capacity shouldn't be overfilled")
	}
	if tracker.OverfillAmount() != 0 {
		t.Fatalf("overfill amount should be 0, got %v", tracker.OverfillAmount())
	}
	tracker.RecordInsert()
	tracker.RecordInsert()
	if !tracker.IsOverfilled() {
		t.Fatal("tracker past capacity should be overfilled")
	}
	if tracker.OverfillAmount() != 2 {
		t.Fatalf("overfill amount should be 2, got %v", tracker.OverfillAmount())
	}
	if tracker.ActualFalsePositiveRate() <= tracker.TheoreticalFalsePositiveRate() {
		t.Fatalf("actual rate %v should exceed theoretical rate %v", tracker.ActualFalsePositiveRate(), tracker.TheoreticalFalsePositiveRate())
	}
}

func TestTrackerStatusSummary(t *testing.T) {
	tracker := newTestTracker(t, 100, 0.01)
	for i := 0; i < 50; i++ {
		tracker.RecordInsert()
	}
	tracker.RecordQuery()
	status := tracker.StatusSummary()
	for _, part := range []string{"Inserted: 50/100 items", "(50.0% full)", "Queries: 1", "Theoretical FPR: 1.0000%"} {
		if !strings.Contains(status, part) {
			t.Errorf("status %q should contain %q", status, part)
		}
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := newTestTracker(t, 100, 0.01)
	tracker.RecordInsert()
	tracker.RecordQuery()
	tracker.Reset()
	if tracker.ItemsInserted() != 0 || tracker.QueriesPerformed() != 0 {
		t.Fatalf("reset should zero the counters, got %v/%v", tracker.ItemsInserted(), tracker.QueriesPerformed())
	}
}

func TestTrackerClone(t *testing.T) {
	tracker := newTestTracker(t, 100, 0.01)
	tracker.RecordInsert()
	clone := tracker.clone()
	clone.RecordInsert()
	if tracker.ItemsInserted() != 1 || clone.ItemsInserted() != 2 {
		t.Fatalf("clone should count independently, got %v and %v", tracker.ItemsInserted(), clone.ItemsInserted())
	}
}
