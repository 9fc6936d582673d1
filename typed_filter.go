package precisionbloom

import "encoding/binary"

// Encoder reduces an item to the bytes that get hashed. Equal items must
// encode to equal bytes for the lifetime of the filter.
type Encoder[T any] func(item T) []byte

// Integer is the set of integer types IntegerEncoder accepts
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// StringEncoder encodes a string as its bytes
func StringEncoder[T ~string](item T) []byte {
	return []byte(item)
}

// BytesEncoder passes byte slices through
func BytesEncoder[T ~[]byte](item T) []byte {
	return item
}

// IntegerEncoder encodes an integer as 8 little endian bytes, so 7 and
// int8(7) encode alike
func IntegerEncoder[T Integer](item T) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, 8), uint64(item))
}

// TypedBloomFilter adapts a BloomFilter to items of type T
type TypedBloomFilter[T any] struct {
	filter *BloomFilter
	encode Encoder[T]
}

var (
	_ BaseFilter[string] = (*TypedBloomFilter[string])(nil)
	_ BaseFilter[[]byte] = (*BloomFilter)(nil)
)

// NewTypedBloomFilter wraps _filter_, encoding items with _encode_
func NewTypedBloomFilter[T any](filter *BloomFilter, encode Encoder[T]) *TypedBloomFilter[T] {
	return &TypedBloomFilter[T]{filter, encode}
}

// Insert writes _item_ into the filter, see BloomFilter.Insert
func (typed *TypedBloomFilter[T]) Insert(item T) (bool, error) {
	return typed.filter.Insert(typed.encode(item))
}

// Lookup reports whether _item_ may have been inserted
func (typed *TypedBloomFilter[T]) Lookup(item T) (bool, error) {
	return typed.filter.Contains(typed.encode(item))
}

// Contains is Lookup
func (typed *TypedBloomFilter[T]) Contains(item T) (bool, error) {
	return typed.Lookup(item)
}

// Filter returns the wrapped BloomFilter
func (typed *TypedBloomFilter[T]) Filter() *BloomFilter {
	return typed.filter
}
