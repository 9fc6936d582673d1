/*
Bit storage for the filter. The in-memory BitSetMem is backed by
https://github.com/bits-and-blooms/bitset while BitSetRedis keeps the bits
in a Redis string and uses the bit operations of Redis.
*/
package precisionbloom

import "fmt"

type IBitSet interface {
	// Size returns the number of bits in the bitset
	Size() uint

	// Has returns true if the bit is set at index, else false
	Has(index uint) (bool, error)

	// HasMulti returns an array of boolean values for the queried
	// index values in the indexes array
	HasMulti(indexes []uint) ([]bool, error)

	// Insert sets the bit at index and reports whether it was unset before
	Insert(index uint) (bool, error)

	// InsertMulti sets the bits at the indices passed in the indexes array
	// and reports, per index, whether the bit was unset before
	InsertMulti(indexes []uint) ([]bool, error)

	// Clear unsets every bit
	Clear() error

	// BitCount returns the total number of set bits in the bitset
	BitCount() (uint, error)

	// Equals checks if two bitsets are equal
	Equals(otherBitSet IBitSet) (bool, error)

	// Clone returns a deep copy which shares no state with the bitset
	Clone() (IBitSet, error)
}

// Saturation returns the fraction of bits of _bitSet_ that are set
func Saturation(bitSet IBitSet) (float64, error) {
	count, err := bitSet.BitCount()
	if err != nil {
		return 0, err
	}
	return float64(count) / float64(bitSet.Size()), nil
}

func checkIndex(index, size uint) error {
	if index >= size {
		return fmt.Errorf("precisionbloom: %w: index %v, size %v", ErrIndexOutOfRange, index, size)
	}
	return nil
}

func checkIndexes(indexes []uint, size uint) error {
	for _, index := range indexes {
		if err := checkIndex(index, size); err != nil {
			return err
		}
	}
	return nil
}
