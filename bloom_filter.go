/*
Package precisionbloom provides a Bloom filter sized from the expected number
of items and a target false positive rate. The filter derives its k bit
positions by double hashing two independent 64 bit hashes and keeps track of
its fill level, so the live false positive rate can be reported next to the
design rate. Bits are kept either in memory or in Redis.
*/
package precisionbloom

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kwertop/precisionbloom/internal/util"
)

// The BloomFilter data structure.
// _params_ is the shape of the filter, fixed at construction
// _filter_ is the bitset backing the filter. It can either be a BitSetMem
// (in-memory) or a BitSetRedis (redis-backed).
// _strategy_ derives the numHashes bit positions of an item
// _tracker_ counts insertions and queries
// _metadataKey_ saves the information about a Bloom filter saved on Redis
//
// A BloomFilter is not safe for concurrent use, wrap it in a SyncBloomFilter
// to share it between goroutines.
type BloomFilter struct {
	params      Parameters
	filter      IBitSet
	strategy    *HashStrategy
	tracker     *AccuracyTracker
	metadataKey string
	algorithms  [2]HashAlgorithm
}

// NewBloomFilterWithCapacity creates an in-memory BloomFilter sized for
// _expectedItems_ items at the false positive rate _falsePositiveRate_
func NewBloomFilterWithCapacity(expectedItems uint, falsePositiveRate float64) (*BloomFilter, error) {
	params, err := NewParametersFromItemCount(expectedItems, falsePositiveRate)
	if err != nil {
		return nil, err
	}
	return NewBloomFilter(params)
}

// NewBloomFilterWithBitCount creates an in-memory BloomFilter of exactly
// _numBits_ bits tuned for _expectedItems_ items
func NewBloomFilterWithBitCount(numBits, expectedItems uint) (*BloomFilter, error) {
	params, err := NewParametersFromBitCount(numBits, expectedItems)
	if err != nil {
		return nil, err
	}
	return NewBloomFilter(params)
}

// NewBloomFilter creates an in-memory BloomFilter from explicit _params_
func NewBloomFilter(params Parameters) (*BloomFilter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	filter, err := NewBitSetMem(params.NumBits)
	if err != nil {
		return nil, err
	}
	return NewBloomFilterWithBitSet(params, filter, DefaultHashPair())
}

// NewBloomFilterWithBitSet creates a BloomFilter on top of _filter_, which
// must be _params_.NumBits bits long, hashing items with _hashes_
func NewBloomFilterWithBitSet(params Parameters, filter IBitSet, hashes HashPair) (*BloomFilter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, fmt.Errorf("precisionbloom: error initializing filter: %w", ErrNilBitSet)
	}
	if filter.Size() != params.NumBits {
		return nil, fmt.Errorf("precisionbloom: error initializing filter: %w: bitset has %v bits, parameters want %v", ErrSizeMismatch, filter.Size(), params.NumBits)
	}
	strategy, err := NewHashStrategy(params.NumHashes, params.NumBits, hashes)
	if err != nil {
		return nil, err
	}
	return &BloomFilter{
		params:   params,
		filter:   filter,
		strategy: strategy,
		tracker:  NewAccuracyTracker(params),
	}, nil
}

// NewRedisBloomFilterWithCapacity creates a Redis backed BloomFilter sized
// for _expectedItems_ items at _falsePositiveRate_ hashing with xxhash and
// metro. The metadata key can be retrieved using GetMetadataKey.
func NewRedisBloomFilterWithCapacity(expectedItems uint, falsePositiveRate float64) (*BloomFilter, error) {
	return NewRedisBloomFilterWithAlgorithms(expectedItems, falsePositiveRate, AlgXXHash, AlgMetro)
}

// NewRedisBloomFilterWithAlgorithms creates a Redis backed BloomFilter
// hashing with _primary_ and _secondary_. The algorithm names are saved with
// the metadata so NewRedisBloomFilterFromKey hashes the same way.
func NewRedisBloomFilterWithAlgorithms(expectedItems uint, falsePositiveRate float64, primary, secondary HashAlgorithm) (*BloomFilter, error) {
	params, err := NewParametersFromItemCount(expectedItems, falsePositiveRate)
	if err != nil {
		return nil, err
	}
	hashes, err := NewHashPair(primary, secondary)
	if err != nil {
		return nil, err
	}
	filter, err := NewBitSetRedis(params.NumBits)
	if err != nil {
		return nil, err
	}
	bloomFilter, err := NewBloomFilterWithBitSet(params, filter, hashes)
	if err != nil {
		return nil, err
	}
	bloomFilter.algorithms = [2]HashAlgorithm{primary, secondary}
	if err := bloomFilter.saveRedisMetadata(); err != nil {
		return nil, errors.Join(err, filter.Delete())
	}
	return bloomFilter, nil
}

// NewRedisBloomFilterFromKey is used to create a Redis backed BloomFilter
// from the _metadataKey_ of an existing one. Insertion and query counters
// are local to the process and start at zero.
func NewRedisBloomFilterFromKey(metadataKey string) (*BloomFilter, error) {
	client, err := getRedisClient()
	if err != nil {
		return nil, err
	}
	values, err := client.HGetAll(context.Background(), metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("precisionbloom: error while fetching metadata %v from redis: %w", metadataKey, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("precisionbloom: no bloom filter metadata at key %v", metadataKey)
	}
	params, err := parseRedisMetadata(values)
	if err != nil {
		return nil, fmt.Errorf("precisionbloom: invalid metadata at key %v: %w", metadataKey, err)
	}
	primary, err := ParseHashAlgorithm(values["primaryHash"])
	if err != nil {
		return nil, err
	}
	secondary, err := ParseHashAlgorithm(values["secondaryHash"])
	if err != nil {
		return nil, err
	}
	hashes, err := NewHashPair(primary, secondary)
	if err != nil {
		return nil, err
	}
	filter, err := FromRedisKey(values["bitsetKey"], params.NumBits)
	if err != nil {
		return nil, err
	}
	bloomFilter, err := NewBloomFilterWithBitSet(params, filter, hashes)
	if err != nil {
		return nil, err
	}
	bloomFilter.metadataKey = metadataKey
	bloomFilter.algorithms = [2]HashAlgorithm{primary, secondary}
	return bloomFilter, nil
}

func parseRedisMetadata(values map[string]string) (Parameters, error) {
	numBits, err := strconv.ParseUint(values["numBits"], 10, 64)
	if err != nil {
		return Parameters{}, err
	}
	numHashes, err := strconv.ParseUint(values["numHashes"], 10, 64)
	if err != nil {
		return Parameters{}, err
	}
	expectedItems, err := strconv.ParseUint(values["expectedItems"], 10, 64)
	if err != nil {
		return Parameters{}, err
	}
	falsePositiveRate, err := strconv.ParseFloat(values["falsePositiveRate"], 64)
	if err != nil {
		return Parameters{}, err
	}
	params := Parameters{
		NumBits:           uint(numBits),
		NumHashes:         uint(numHashes),
		ExpectedItems:     uint(expectedItems),
		FalsePositiveRate: falsePositiveRate,
	}
	return params, params.Validate()
}

func (bloomFilter *BloomFilter) saveRedisMetadata() error {
	redisSet, ok := bloomFilter.filter.(*BitSetRedis)
	if !ok {
		return nil
	}
	client, err := getRedisClient()
	if err != nil {
		return err
	}
	metadataKey := util.GenerateRandomString(16)
	metadata := map[string]interface{}{
		"numBits":           strconv.FormatUint(uint64(bloomFilter.params.NumBits), 10),
		"numHashes":         strconv.FormatUint(uint64(bloomFilter.params.NumHashes), 10),
		"expectedItems":     strconv.FormatUint(uint64(bloomFilter.params.ExpectedItems), 10),
		"falsePositiveRate": strconv.FormatFloat(bloomFilter.params.FalsePositiveRate, 'g', -1, 64),
		"primaryHash":       bloomFilter.algorithms[0].String(),
		"secondaryHash":     bloomFilter.algorithms[1].String(),
		"bitsetKey":         redisSet.Key(),
	}
	if err := client.HSet(context.Background(), metadataKey, metadata).Err(); err != nil {
		return fmt.Errorf("precisionbloom: error while creating bloom filter redis. error: %w", err)
	}
	bloomFilter.metadataKey = metadataKey
	return nil
}

// Insert writes _data_ into the filter. It returns true when at least one of
// the item's bits was unset before, a hint that the item is probably new.
// A new item whose bits were all set by others also returns false, so the
// result is no membership guarantee.
func (bloomFilter *BloomFilter) Insert(data []byte) (bool, error) {
	fresh, err := bloomFilter.filter.InsertMulti(bloomFilter.strategy.Indices(data))
	if err != nil {
		return false, err
	}
	bloomFilter.tracker.RecordInsert()
	for _, ok := range fresh {
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// InsertString accepts string value as _data_ for inserting into the Bloom filter
func (bloomFilter *BloomFilter) InsertString(data string) (bool, error) {
	return bloomFilter.Insert([]byte(data))
}

// Contains returns true if all the bits of _data_ are set. An item that was
// inserted is always reported, one that wasn't is reported with the false
// positive rate of the filter.
func (bloomFilter *BloomFilter) Contains(data []byte) (bool, error) {
	values, err := bloomFilter.filter.HasMulti(bloomFilter.strategy.Indices(data))
	if err != nil {
		return false, err
	}
	bloomFilter.tracker.RecordQuery()
	for _, ok := range values {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// MayContain is Contains
func (bloomFilter *BloomFilter) MayContain(data []byte) (bool, error) {
	return bloomFilter.Contains(data)
}

// ContainsString accepts string value as _data_ to lookup the Bloom filter
func (bloomFilter *BloomFilter) ContainsString(data string) (bool, error) {
	return bloomFilter.Contains([]byte(data))
}

// Lookup is Contains
func (bloomFilter *BloomFilter) Lookup(data []byte) (bool, error) {
	return bloomFilter.Contains(data)
}

// LookupString is ContainsString
func (bloomFilter *BloomFilter) LookupString(data string) (bool, error) {
	return bloomFilter.Contains([]byte(data))
}

// Clear unsets every bit and resets the counters
func (bloomFilter *BloomFilter) Clear() error {
	if err := bloomFilter.filter.Clear(); err != nil {
		return err
	}
	bloomFilter.tracker.Reset()
	return nil
}

// Len returns the number of insertions since creation or the last Clear
func (bloomFilter *BloomFilter) Len() uint {
	return bloomFilter.tracker.ItemsInserted()
}

// IsEmpty reports whether nothing was inserted since creation or the last Clear
func (bloomFilter *BloomFilter) IsEmpty() bool {
	return bloomFilter.Len() == 0
}

// Capacity returns the number of items the filter is sized for
func (bloomFilter *BloomFilter) Capacity() uint {
	return bloomFilter.params.ExpectedItems
}

// NumBits returns the size of the bit array
func (bloomFilter *BloomFilter) NumBits() uint {
	return bloomFilter.params.NumBits
}

// NumHashes returns the number of bit positions per item
func (bloomFilter *BloomFilter) NumHashes() uint {
	return bloomFilter.params.NumHashes
}

// Parameters returns the parameters of the filter
func (bloomFilter *BloomFilter) Parameters() Parameters {
	return bloomFilter.params
}

// FalsePositiveRate returns the design false positive rate
func (bloomFilter *BloomFilter) FalsePositiveRate() float64 {
	return bloomFilter.tracker.TheoreticalFalsePositiveRate()
}

// ActualFalsePositiveRate returns the false positive rate at the current
// number of insertions
func (bloomFilter *BloomFilter) ActualFalsePositiveRate() float64 {
	return bloomFilter.tracker.ActualFalsePositiveRate()
}

// EstimatedFalsePositiveRate returns the false positive rate implied by the
// bits actually set, saturation^k. It accounts for repeated insertions of
// the same item which the insertion count doesn't.
func (bloomFilter *BloomFilter) EstimatedFalsePositiveRate() (float64, error) {
	saturation, err := bloomFilter.Saturation()
	if err != nil {
		return 0, err
	}
	return estimateFromSaturation(saturation, bloomFilter.params.NumHashes), nil
}

func estimateFromSaturation(saturation float64, numHashes uint) float64 {
	return math.Pow(saturation, float64(numHashes))
}

// Saturation returns the fraction of bits that are set
func (bloomFilter *BloomFilter) Saturation() (float64, error) {
	return Saturation(bloomFilter.filter)
}

// IsOverfilled reports whether more items were inserted than the filter is
// sized for. An overfilled filter keeps working with a degraded rate.
func (bloomFilter *BloomFilter) IsOverfilled() bool {
	return bloomFilter.tracker.IsOverfilled()
}

// FillRatio returns inserted items over capacity
func (bloomFilter *BloomFilter) FillRatio() float64 {
	return bloomFilter.tracker.FillRatio()
}

// QueriesPerformed returns the number of Contains calls since creation or
// the last Clear
func (bloomFilter *BloomFilter) QueriesPerformed() uint {
	return bloomFilter.tracker.QueriesPerformed()
}

// Status returns a one line summary of the fill level and accuracy
func (bloomFilter *BloomFilter) Status() string {
	return bloomFilter.tracker.StatusSummary()
}

// GetBitSet returns the internal bitset. It would be a BitSetMem in case of an
// in-memory Bloom filter while it would be a BitSetRedis for a Redis backed
// Bloom filter.
func (bloomFilter *BloomFilter) GetBitSet() IBitSet {
	return bloomFilter.filter
}

// GetMetadataKey returns the Redis key used to store the metadata about the Redis
// backed Bloom filter
func (bloomFilter *BloomFilter) GetMetadataKey() string {
	return bloomFilter.metadataKey
}

// Clone returns a deep copy of the filter. A Redis backed filter is copied
// to new keys.
func (bloomFilter *BloomFilter) Clone() (*BloomFilter, error) {
	filter, err := bloomFilter.filter.Clone()
	if err != nil {
		return nil, err
	}
	clone := &BloomFilter{
		params:     bloomFilter.params,
		filter:     filter,
		strategy:   bloomFilter.strategy,
		tracker:    bloomFilter.tracker.clone(),
		algorithms: bloomFilter.algorithms,
	}
	if bloomFilter.metadataKey != "" {
		if err := clone.saveRedisMetadata(); err != nil {
			if redisSet, ok := filter.(*BitSetRedis); ok {
				err = errors.Join(err, redisSet.Delete())
			}
			return nil, err
		}
	}
	return clone, nil
}

// Equals checks if two BloomFilter's have the same parameters and bits
func (aFilter *BloomFilter) Equals(bFilter *BloomFilter) (bool, error) {
	if aFilter.params != bFilter.params {
		return false, nil
	}
	return aFilter.filter.Equals(bFilter.filter)
}

// Delete removes a Redis backed filter's bits and metadata from Redis. It
// does nothing for an in-memory filter.
func (bloomFilter *BloomFilter) Delete() error {
	redisSet, ok := bloomFilter.filter.(*BitSetRedis)
	if !ok {
		return nil
	}
	if err := redisSet.Delete(); err != nil {
		return err
	}
	if bloomFilter.metadataKey == "" {
		return nil
	}
	client, err := getRedisClient()
	if err != nil {
		return err
	}
	if err := client.Del(context.Background(), bloomFilter.metadataKey).Err(); err != nil {
		return fmt.Errorf("precisionbloom: error deleting metadata %v: %w", bloomFilter.metadataKey, err)
	}
	return nil
}
