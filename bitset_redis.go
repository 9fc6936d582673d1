package precisionbloom

import (
	"context"
	"fmt"

	"github.com/kwertop/precisionbloom/internal/util"
	"github.com/redis/go-redis/v9"
)

// BitSetRedis is an implementation of IBitSet backed by a Redis string.
// _size_ is the number of bits in the bitset
// _key_ is the Redis key holding the bits
type BitSetRedis struct {
	size uint
	key  string
}

// NewBitSetRedis creates a zeroed Redis bitset of _size_ bits under a random key
func NewBitSetRedis(size uint) (*BitSetRedis, error) {
	if size == 0 {
		return nil, fmt.Errorf("precisionbloom: error creating bitset: %w", ErrZeroBits)
	}
	bitSet := &BitSetRedis{size, util.GenerateRandomString(16)}
	if err := bitSet.zero(); err != nil {
		return nil, err
	}
	return bitSet, nil
}

// FromRedisKey attaches to the bits already stored at _key_. The stored
// string must be long enough to hold _size_ bits.
func FromRedisKey(key string, size uint) (*BitSetRedis, error) {
	if size == 0 {
		return nil, fmt.Errorf("precisionbloom: error creating bitset: %w", ErrZeroBits)
	}
	client, err := getRedisClient()
	if err != nil {
		return nil, err
	}
	length, err := client.StrLen(context.Background(), key).Result()
	if err != nil {
		return nil, fmt.Errorf("precisionbloom: error reading bitset %v from redis: %w", key, err)
	}
	if uint(length) < util.BytesFor(size) {
		return nil, fmt.Errorf("precisionbloom: %w: key %v holds %v bytes, need %v", ErrSizeMismatch, key, length, util.BytesFor(size))
	}
	return &BitSetRedis{size, key}, nil
}

// Size returns the size of the bitset
func (bitSet *BitSetRedis) Size() uint {
	return bitSet.size
}

// Key returns the Redis key holding the bits
func (bitSet *BitSetRedis) Key() string {
	return bitSet.key
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetRedis) Has(index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	client, err := getRedisClient()
	if err != nil {
		return false, err
	}
	val, err := client.GetBit(context.Background(), bitSet.key, int64(index)).Result()
	if err != nil {
		return false, fmt.Errorf("precisionbloom: error reading bit %v of %v: %w", index, bitSet.key, err)
	}
	return val != 0, nil
}

// HasMulti checks the bits at _indexes_ in a single pipelined round trip
func (bitSet *BitSetRedis) HasMulti(indexes []uint) ([]bool, error) {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	client, err := getRedisClient()
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return []bool{}, nil
	}
	ctx := context.Background()
	pipe := client.Pipeline()
	values := make([]*redis.IntCmd, len(indexes))
	for i := range indexes {
		values[i] = pipe.GetBit(ctx, bitSet.key, int64(indexes[i]))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("precisionbloom: error reading bits of %v: %w", bitSet.key, err)
	}
	result := make([]bool, len(values))
	for i := range values {
		result[i] = values[i].Val() != 0
	}
	return result, nil
}

// Insert sets the bit at _index_. SETBIT hands back the previous value, so
// no extra read is needed to tell whether the bit is new.
func (bitSet *BitSetRedis) Insert(index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	client, err := getRedisClient()
	if err != nil {
		return false, err
	}
	old, err := client.SetBit(context.Background(), bitSet.key, int64(index), 1).Result()
	if err != nil {
		return false, fmt.Errorf("precisionbloom: error setting bit %v of %v: %w", index, bitSet.key, err)
	}
	return old == 0, nil
}

// InsertMulti sets the bits at _indexes_ in a single pipelined round trip
func (bitSet *BitSetRedis) InsertMulti(indexes []uint) ([]bool, error) {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	client, err := getRedisClient()
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return []bool{}, nil
	}
	ctx := context.Background()
	pipe := client.Pipeline()
	values := make([]*redis.IntCmd, len(indexes))
	for i := range indexes {
		values[i] = pipe.SetBit(ctx, bitSet.key, int64(indexes[i]), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("precisionbloom: error setting bits of %v: %w", bitSet.key, err)
	}
	result := make([]bool, len(values))
	for i := range values {
		result[i] = values[i].Val() == 0
	}
	return result, nil
}

// Clear overwrites the stored bits with zeroes
func (bitSet *BitSetRedis) Clear() error {
	return bitSet.zero()
}

func (bitSet *BitSetRedis) zero() error {
	client, err := getRedisClient()
	if err != nil {
		return err
	}
	zeroes := make([]byte, util.BytesFor(bitSet.size))
	if err := client.Set(context.Background(), bitSet.key, string(zeroes), 0).Err(); err != nil {
		return fmt.Errorf("precisionbloom: error writing bitset %v: %w", bitSet.key, err)
	}
	return nil
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetRedis) BitCount() (uint, error) {
	client, err := getRedisClient()
	if err != nil {
		return 0, err
	}
	bitRange := &redis.BitCount{Start: 0, End: -1}
	val, err := client.BitCount(context.Background(), bitSet.key, bitRange).Result()
	if err != nil {
		return 0, fmt.Errorf("precisionbloom: error counting bits of %v: %w", bitSet.key, err)
	}
	return uint(val), nil
}

// Equals checks if two BitSetRedis hold the same bits
func (aSet *BitSetRedis) Equals(otherBitSet IBitSet) (bool, error) {
	bSet, ok := otherBitSet.(*BitSetRedis)
	if !ok {
		return false, fmt.Errorf("precisionbloom: %w: should be *BitSetRedis, got %T", ErrBitSetTypeMismatch, otherBitSet)
	}
	if aSet.size != bSet.size {
		return false, nil
	}
	aSetVal, err := aSet.load()
	if err != nil {
		return false, err
	}
	bSetVal, err := bSet.load()
	if err != nil {
		return false, err
	}
	return aSetVal == bSetVal, nil
}

// Clone copies the stored bits to a new random key
func (bitSet *BitSetRedis) Clone() (IBitSet, error) {
	val, err := bitSet.load()
	if err != nil {
		return nil, err
	}
	client, err := getRedisClient()
	if err != nil {
		return nil, err
	}
	clone := &BitSetRedis{bitSet.size, util.GenerateRandomString(16)}
	if err := client.Set(context.Background(), clone.key, val, 0).Err(); err != nil {
		return nil, fmt.Errorf("precisionbloom: error writing bitset %v: %w", clone.key, err)
	}
	return clone, nil
}

// Delete removes the bits from Redis. The bitset is unusable afterwards.
func (bitSet *BitSetRedis) Delete() error {
	client, err := getRedisClient()
	if err != nil {
		return err
	}
	if err := client.Del(context.Background(), bitSet.key).Err(); err != nil {
		return fmt.Errorf("precisionbloom: error deleting bitset %v: %w", bitSet.key, err)
	}
	return nil
}

func (bitSet *BitSetRedis) load() (string, error) {
	client, err := getRedisClient()
	if err != nil {
		return "", err
	}
	val, err := client.Get(context.Background(), bitSet.key).Result()
	if err != nil {
		return "", fmt.Errorf("precisionbloom: error reading bitset %v from redis: %w", bitSet.key, err)
	}
	return val, nil
}
