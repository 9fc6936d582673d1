package precisionbloom

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// HashFunc reduces a byte slice to a 64 bit hash value
type HashFunc func(data []byte) uint64

// HashAlgorithm names one of the built in hash functions
type HashAlgorithm int

const (
	AlgXXHash HashAlgorithm = iota + 1 // default primary
	AlgMetro                           // default secondary
	AlgMurmur3
	AlgXXH3
	AlgFNV1a
	AlgBlake2b // slowest, best distribution
)

const metroSeed = 1373

var hashAlgorithmNames = map[HashAlgorithm]string{
	AlgXXHash:  "xxhash",
	AlgMetro:   "metro",
	AlgMurmur3: "murmur3",
	AlgXXH3:    "xxh3",
	AlgFNV1a:   "fnv1a",
	AlgBlake2b: "blake2b",
}

func (alg HashAlgorithm) String() string {
	if name, ok := hashAlgorithmNames[alg]; ok {
		return name
	}
	return fmt.Sprintf("HashAlgorithm(%d)", int(alg))
}

// ParseHashAlgorithm returns the algorithm called _name_, e.g. "xxhash"
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	for alg, algName := range hashAlgorithmNames {
		if algName == name {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("precisionbloom: %w: %q", ErrUnknownHashAlgorithm, name)
}

// HashFuncFor returns the HashFunc implementing _alg_
func HashFuncFor(alg HashAlgorithm) (HashFunc, error) {
	switch alg {
	case AlgXXHash:
		return xxhash.Sum64, nil
	case AlgMetro:
		return func(data []byte) uint64 {
			return metro.Hash64(data, metroSeed)
		}, nil
	case AlgMurmur3:
		return murmur3.Sum64, nil
	case AlgXXH3:
		return xxh3.Hash, nil
	case AlgFNV1a:
		return func(data []byte) uint64 {
			h := fnv.New64a()
			h.Write(data)
			return h.Sum64()
		}, nil
	case AlgBlake2b:
		return func(data []byte) uint64 {
			sum := blake2b.Sum256(data)
			return binary.LittleEndian.Uint64(sum[:8])
		}, nil
	default:
		return nil, fmt.Errorf("precisionbloom: %w: %v", ErrUnknownHashAlgorithm, alg)
	}
}

// HashPair holds the two base hash functions combined by double hashing.
// They should use different internal mixing, two seeds of one algorithm
// correlate.
type HashPair struct {
	Primary   HashFunc
	Secondary HashFunc
}

// DefaultHashPair returns xxhash as primary and metro as secondary
func DefaultHashPair() HashPair {
	primary, _ := HashFuncFor(AlgXXHash)
	secondary, _ := HashFuncFor(AlgMetro)
	return HashPair{primary, secondary}
}

// NewHashPair builds a HashPair from two distinct built in algorithms
func NewHashPair(primary, secondary HashAlgorithm) (HashPair, error) {
	if primary == secondary {
		return HashPair{}, fmt.Errorf("precisionbloom: %w: both are %v", ErrSameHashAlgorithm, primary)
	}
	h1, err := HashFuncFor(primary)
	if err != nil {
		return HashPair{}, err
	}
	h2, err := HashFuncFor(secondary)
	if err != nil {
		return HashPair{}, err
	}
	return HashPair{h1, h2}, nil
}

func (hashes HashPair) validate() error {
	if hashes.Primary == nil || hashes.Secondary == nil {
		return fmt.Errorf("precisionbloom: %w", ErrNilHashFunc)
	}
	return nil
}

// HashStrategy derives the bit positions of an item with Kirsch-Mitzenmacher
// double hashing: the i-th position is (h1 + i*h2) mod m. Two hash
// evaluations per item give k positions that behave like k independent
// hashes.
type HashStrategy struct {
	numHashes uint
	numBits   uint
	hashes    HashPair
}

// NewHashStrategy creates a HashStrategy producing _numHashes_ positions in
// [0, _numBits_) from the two functions of _hashes_
func NewHashStrategy(numHashes, numBits uint, hashes HashPair) (*HashStrategy, error) {
	if numHashes == 0 {
		return nil, fmt.Errorf("precisionbloom: %w", ErrZeroHashes)
	}
	if numBits == 0 {
		return nil, fmt.Errorf("precisionbloom: %w", ErrZeroBits)
	}
	if err := hashes.validate(); err != nil {
		return nil, err
	}
	return &HashStrategy{numHashes, numBits, hashes}, nil
}

// Indices returns the numHashes bit positions of _data_. Positions can
// repeat.
func (strategy *HashStrategy) Indices(data []byte) []uint {
	return strategy.AppendIndices(make([]uint, 0, strategy.numHashes), data)
}

// AppendIndices appends the bit positions of _data_ to _dst_. It doesn't
// allocate when _dst_ has room for numHashes more positions.
func (strategy *HashStrategy) AppendIndices(dst []uint, data []byte) []uint {
	h1 := strategy.hashes.Primary(data)
	h2 := strategy.hashes.Secondary(data)
	m := uint64(strategy.numBits)
	for i := uint64(0); i < uint64(strategy.numHashes); i++ {
		// wraps on overflow
		dst = append(dst, uint((h1+i*h2)%m))
	}
	return dst
}

// NumHashes returns the number of positions derived per item
func (strategy *HashStrategy) NumHashes() uint {
	return strategy.numHashes
}

// NumBits returns the modulus of the derived positions
func (strategy *HashStrategy) NumBits() uint {
	return strategy.numBits
}
