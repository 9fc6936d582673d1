package precisionbloom

import (
	"fmt"
	"sync/atomic"
)

// AccuracyTracker counts the insertions and queries of a filter and derives
// its fill level and live false positive rate from them.
// _params_ is a copy of the filter's parameters
// Counters are updated atomically so readers holding a shared lock can
// record queries side by side.
type AccuracyTracker struct {
	params           Parameters
	itemsInserted    atomic.Uint64
	queriesPerformed atomic.Uint64
}

// NewAccuracyTracker creates a tracker with zeroed counters for _params_
func NewAccuracyTracker(params Parameters) *AccuracyTracker {
	return &AccuracyTracker{params: params}
}

// RecordInsert records one insertion
func (tracker *AccuracyTracker) RecordInsert() {
	tracker.itemsInserted.Add(1)
}

// RecordQuery records one membership query
func (tracker *AccuracyTracker) RecordQuery() {
	tracker.queriesPerformed.Add(1)
}

// ItemsInserted returns the number of insertions since creation or the last reset
func (tracker *AccuracyTracker) ItemsInserted() uint {
	return uint(tracker.itemsInserted.Load())
}

// QueriesPerformed returns the number of queries since creation or the last reset
func (tracker *AccuracyTracker) QueriesPerformed() uint {
	return uint(tracker.queriesPerformed.Load())
}

// Parameters returns the parameters the tracker measures against
func (tracker *AccuracyTracker) Parameters() Parameters {
	return tracker.params
}

// TheoreticalFalsePositiveRate returns the design rate of the filter
func (tracker *AccuracyTracker) TheoreticalFalsePositiveRate() float64 {
	return tracker.params.FalsePositiveRate
}

// ActualFalsePositiveRate returns the rate at the current insertion count,
// 0 while nothing has been inserted
func (tracker *AccuracyTracker) ActualFalsePositiveRate() float64 {
	items := tracker.ItemsInserted()
	if items == 0 {
		return 0
	}
	return tracker.params.ActualFalsePositiveRate(items)
}

// IsOverfilled reports whether more items were inserted than the filter is sized for
func (tracker *AccuracyTracker) IsOverfilled() bool {
	return tracker.ItemsInserted() > tracker.params.ExpectedItems
}

// FillRatio returns inserted items over expected items
func (tracker *AccuracyTracker) FillRatio() float64 {
	if tracker.params.ExpectedItems == 0 {
		return 0
	}
	return float64(tracker.ItemsInserted()) / float64(tracker.params.ExpectedItems)
}

// OverfillAmount returns how many items were inserted beyond capacity
func (tracker *AccuracyTracker) OverfillAmount() uint {
	items := tracker.ItemsInserted()
	if items > tracker.params.ExpectedItems {
		return items - tracker.params.ExpectedItems
	}
	return 0
}

// StatusSummary returns a one line human readable account of the counters
func (tracker *AccuracyTracker) StatusSummary() string {
	return fmt.Sprintf(
		"Inserted: %d/%d items (%.1f%% full), Queries: %d, Theoretical FPR: %.4f%%, Actual FPR: %.4f%%",
		tracker.ItemsInserted(),
		tracker.params.ExpectedItems,
		tracker.FillRatio()*100,
		tracker.QueriesPerformed(),
		tracker.TheoreticalFalsePositiveRate()*100,
		tracker.ActualFalsePositiveRate()*100,
	)
}

// Reset zeroes both counters
func (tracker *AccuracyTracker) Reset() {
	tracker.itemsInserted.Store(0)
	tracker.queriesPerformed.Store(0)
}

func (tracker *AccuracyTracker) clone() *AccuracyTracker {
	clone := NewAccuracyTracker(tracker.params)
	clone.itemsInserted.Store(tracker.itemsInserted.Load())
	clone.queriesPerformed.Store(tracker.queriesPerformed.Load())
	return clone
}
