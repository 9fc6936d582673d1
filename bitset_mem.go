package precisionbloom

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/kwertop/precisionbloom/internal/util"
)

// BitSetMem is an in-memory implementation of IBitSet.
// _size_ is the number of bits in the bitset
// _set_ is the bitset implementation adopted from https://github.com/bits-and-blooms/bitset
type BitSetMem struct {
	set  *bitset.BitSet
	size uint
}

// NewBitSetMem creates a new zeroed BitSetMem of _size_ bits
func NewBitSetMem(size uint) (*BitSetMem, error) {
	if size == 0 {
		return nil, fmt.Errorf("precisionbloom: error creating bitset: %w", ErrZeroBits)
	}
	return &BitSetMem{bitset.New(size), size}, nil
}

// NewBitSetMemFromWords restores a BitSetMem of _size_ bits from _words_,
// e.g. the output of Words. _words_ must hold at least ceil(size/64) words.
// Extra words and any bits at or beyond _size_ are dropped.
func NewBitSetMemFromWords(words []uint64, size uint) (*BitSetMem, error) {
	if size == 0 {
		return nil, fmt.Errorf("precisionbloom: error creating bitset: %w", ErrZeroBits)
	}
	required := util.WordsFor(size)
	if uint(len(words)) < required {
		return nil, fmt.Errorf("precisionbloom: %w: %v words for %v bits, need %v", ErrInsufficientWords, len(words), size, required)
	}
	data := make([]uint64, required)
	copy(data, words)
	if tail := size % util.WordSize; tail != 0 {
		data[required-1] &= (uint64(1) << tail) - 1
	}
	set := bitset.From(data)
	set.Shrink(size - 1)
	return &BitSetMem{set, size}, nil
}

// Size returns the size of the bitset
func (bitSet *BitSetMem) Size() uint {
	return bitSet.size
}

// Has checks if the bit at index _index_ is set
func (bitSet *BitSetMem) Has(index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	return bitSet.set.Test(index), nil
}

// HasMulti checks if the bit at the indices
// specified by _indexes_ array is set
func (bitSet *BitSetMem) HasMulti(indexes []uint) ([]bool, error) {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	result := make([]bool, len(indexes))
	for i, index := range indexes {
		result[i] = bitSet.set.Test(index)
	}
	return result, nil
}

// Insert sets the bit at index specified by _index_
func (bitSet *BitSetMem) Insert(index uint) (bool, error) {
	if err := checkIndex(index, bitSet.size); err != nil {
		return false, err
	}
	return bitSet.testAndSet(index), nil
}

// InsertMulti sets the bits at the indices specified by _indexes_
func (bitSet *BitSetMem) InsertMulti(indexes []uint) ([]bool, error) {
	if err := checkIndexes(indexes, bitSet.size); err != nil {
		return nil, err
	}
	result := make([]bool, len(indexes))
	for i, index := range indexes {
		result[i] = bitSet.testAndSet(index)
	}
	return result, nil
}

func (bitSet *BitSetMem) testAndSet(index uint) bool {
	if bitSet.set.Test(index) {
		return false
	}
	bitSet.set.Set(index)
	return true
}

// Clear unsets every bit in place
func (bitSet *BitSetMem) Clear() error {
	bitSet.set.ClearAll()
	return nil
}

// BitCount returns the total number of set bits in the bitset
func (bitSet *BitSetMem) BitCount() (uint, error) {
	return bitSet.set.Count(), nil
}

// Words returns a copy of the 64 bit words backing the bitset
func (bitSet *BitSetMem) Words() []uint64 {
	words := bitSet.set.Bytes()
	data := make([]uint64, util.WordsFor(bitSet.size))
	copy(data, words)
	return data
}

// Equals checks if two BitSetMem are equal or not
func (firstBitSet *BitSetMem) Equals(otherBitSet IBitSet) (bool, error) {
	secondBitSet, ok := otherBitSet.(*BitSetMem)
	if !ok {
		return false, fmt.Errorf("precisionbloom: %w: should be *BitSetMem, got %T", ErrBitSetTypeMismatch, otherBitSet)
	}
	if firstBitSet.size != secondBitSet.size {
		return false, nil
	}
	return firstBitSet.set.Equal(secondBitSet.set), nil
}

// Clone returns a deep copy of the bitset
func (bitSet *BitSetMem) Clone() (IBitSet, error) {
	return &BitSetMem{bitSet.set.Clone(), bitSet.size}, nil
}
