package precisionbloom

import "errors"

// Sentinel errors. Every error returned by the package wraps one of these,
// so callers can use errors.Is to tell configuration mistakes from Redis I/O
// failures.
var (
	ErrZeroItems                = errors.New("expected items must be greater than 0")
	ErrInvalidFalsePositiveRate = errors.New("false positive rate must be between 0 and 1")
	ErrZeroBits                 = errors.New("number of bits must be greater than 0")
	ErrTooManyBits              = errors.New("number of bits exceeds the platform's uint range")
	ErrNilBitSet                = errors.New("bitset is nil")
	ErrZeroHashes               = errors.New("number of hashes must be greater than 0")
	ErrIndexOutOfRange          = errors.New("bit index out of range")
	ErrInsufficientWords        = errors.New("too few words for capacity")
	ErrSizeMismatch             = errors.New("bitset size doesn't match number of bits")
	ErrUnknownHashAlgorithm     = errors.New("unknown hash algorithm")
	ErrSameHashAlgorithm        = errors.New("primary and secondary hash algorithms must differ")
	ErrNilHashFunc              = errors.New("hash function is nil")
	ErrBitSetTypeMismatch       = errors.New("bitsets are of different types")
	ErrRedisClientNotConfigured = errors.New("redis client is not configured")
)
