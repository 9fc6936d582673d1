package precisionbloom

import "sync"

// SyncBloomFilter guards a BloomFilter with a read/write lock. Insertions and
// Clear are exclusive, queries and reporting run alongside each other.
type SyncBloomFilter struct {
	lock   sync.RWMutex
	filter *BloomFilter
}

// NewSyncBloomFilter wraps _filter_. The caller must not use _filter_
// directly afterwards.
func NewSyncBloomFilter(filter *BloomFilter) *SyncBloomFilter {
	return &SyncBloomFilter{filter: filter}
}

// Insert writes _data_ into the filter, see BloomFilter.Insert
func (syncFilter *SyncBloomFilter) Insert(data []byte) (bool, error) {
	syncFilter.lock.Lock()
	defer syncFilter.lock.Unlock()
	return syncFilter.filter.Insert(data)
}

// InsertString accepts string value as _data_ for inserting into the filter
func (syncFilter *SyncBloomFilter) InsertString(data string) (bool, error) {
	return syncFilter.Insert([]byte(data))
}

// Contains reports whether _data_ may have been inserted
func (syncFilter *SyncBloomFilter) Contains(data []byte) (bool, error) {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Contains(data)
}

// ContainsString accepts string value as _data_ to lookup the filter
func (syncFilter *SyncBloomFilter) ContainsString(data string) (bool, error) {
	return syncFilter.Contains([]byte(data))
}

// Clear unsets every bit and resets the counters
func (syncFilter *SyncBloomFilter) Clear() error {
	syncFilter.lock.Lock()
	defer syncFilter.lock.Unlock()
	return syncFilter.filter.Clear()
}

// Len returns the number of insertions
func (syncFilter *SyncBloomFilter) Len() uint {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Len()
}

// IsOverfilled reports whether more items were inserted than the filter is sized for
func (syncFilter *SyncBloomFilter) IsOverfilled() bool {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.IsOverfilled()
}

// Saturation returns the fraction of bits that are set
func (syncFilter *SyncBloomFilter) Saturation() (float64, error) {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Saturation()
}

// Stats returns a Status snapshot of the filter
func (syncFilter *SyncBloomFilter) Stats() (Status, error) {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Stats()
}

// Status returns a one line summary of the fill level and accuracy
func (syncFilter *SyncBloomFilter) Status() string {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Status()
}

// Snapshot returns a deep copy of the wrapped filter taken under the read lock
func (syncFilter *SyncBloomFilter) Snapshot() (*BloomFilter, error) {
	syncFilter.lock.RLock()
	defer syncFilter.lock.RUnlock()
	return syncFilter.filter.Clone()
}
