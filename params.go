package precisionbloom

import (
	"fmt"
	"math"
)

// Parameters describes the shape of a Bloom filter.
// _NumBits_ is the size of the bit array (m)
// _NumHashes_ is the number of bit positions derived per item (k)
// _ExpectedItems_ is the number of items the filter is sized for (n)
// _FalsePositiveRate_ is the target rate when the parameters are solved from
// n and p, or the achieved rate at n items when solved from m and n
type Parameters struct {
	NumBits           uint    `json:"numBits"`
	NumHashes         uint    `json:"numHashes"`
	ExpectedItems     uint    `json:"expectedItems"`
	FalsePositiveRate float64 `json:"falsePositiveRate"`
}

// NewParametersFromItemCount solves for the optimal bit count and hash count
// given the expected number of items _expectedItems_ and the target false
// positive rate _falsePositiveRate_:
//
//	m = ceil(-n * ln(p) / ln(2)^2)
//	k = ceil((m / n) * ln(2))
func NewParametersFromItemCount(expectedItems uint, falsePositiveRate float64) (Parameters, error) {
	if expectedItems == 0 {
		return Parameters{}, fmt.Errorf("precisionbloom: %w", ErrZeroItems)
	}
	if !validRate(falsePositiveRate) {
		return Parameters{}, fmt.Errorf("precisionbloom: %w, got %v", ErrInvalidFalsePositiveRate, falsePositiveRate)
	}
	numBits, err := calculateFilterSize(expectedItems, falsePositiveRate)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		NumBits:           numBits,
		NumHashes:         calculateNumHashes(numBits, expectedItems),
		ExpectedItems:     expectedItems,
		FalsePositiveRate: falsePositiveRate,
	}, nil
}

// NewParametersFromBitCount fixes the memory budget at _numBits_ and solves
// for the hash count that suits _expectedItems_. FalsePositiveRate of the
// result is the rate achieved once _expectedItems_ items are inserted.
func NewParametersFromBitCount(numBits, expectedItems uint) (Parameters, error) {
	if numBits == 0 {
		return Parameters{}, fmt.Errorf("precisionbloom: %w", ErrZeroBits)
	}
	if expectedItems == 0 {
		return Parameters{}, fmt.Errorf("precisionbloom: %w", ErrZeroItems)
	}
	numHashes := calculateNumHashes(numBits, expectedItems)
	params := Parameters{
		NumBits:           numBits,
		NumHashes:         numHashes,
		ExpectedItems:     expectedItems,
		FalsePositiveRate: CalculateFalsePositiveRate(numBits, numHashes, expectedItems),
	}
	if err := params.Validate(); err != nil {
		return Parameters{}, err
	}
	return params, nil
}

// CalculateFalsePositiveRate returns the false positive rate of a filter of
// _numBits_ bits and _numHashes_ hashes holding _itemCount_ items:
//
//	p = (1 - e^(-k*n/m))^k
func CalculateFalsePositiveRate(numBits, numHashes, itemCount uint) float64 {
	if numBits == 0 {
		return 1
	}
	if itemCount == 0 || numHashes == 0 {
		return 0
	}
	m := float64(numBits)
	k := float64(numHashes)
	n := float64(itemCount)
	// 1 - e^x loses every significant digit when x is tiny, expm1 doesn't
	return math.Pow(-math.Expm1(-k*n/m), k)
}

// ActualFalsePositiveRate returns the false positive rate of a filter with
// these parameters once _items_ items have been inserted
func (params Parameters) ActualFalsePositiveRate(items uint) float64 {
	return CalculateFalsePositiveRate(params.NumBits, params.NumHashes, items)
}

// BitsPerItem returns the number of bits reserved for each expected item
func (params Parameters) BitsPerItem() float64 {
	if params.ExpectedItems == 0 {
		return 0
	}
	return float64(params.NumBits) / float64(params.ExpectedItems)
}

// Validate checks the parameters before a filter is built from them. It's
// needed when parameters were hand tuned rather than solved.
func (params Parameters) Validate() error {
	if params.NumBits == 0 {
		return fmt.Errorf("precisionbloom: invalid parameters: %w", ErrZeroBits)
	}
	if params.NumHashes == 0 {
		return fmt.Errorf("precisionbloom: invalid parameters: %w", ErrZeroHashes)
	}
	if params.ExpectedItems == 0 {
		return fmt.Errorf("precisionbloom: invalid parameters: %w", ErrZeroItems)
	}
	if !validRate(params.FalsePositiveRate) {
		return fmt.Errorf("precisionbloom: invalid parameters: %w, got %v", ErrInvalidFalsePositiveRate, params.FalsePositiveRate)
	}
	return nil
}

// validRate is false for NaN as well
func validRate(rate float64) bool {
	return rate > 0 && rate < 1
}

func calculateFilterSize(length uint, errorRate float64) (uint, error) {
	size := math.Ceil(-((float64(length) * math.Log(errorRate)) / (math.Ln2 * math.Ln2)))
	// float64(math.MaxUint) rounds up to 2^64 on 64 bit platforms
	if size >= float64(math.MaxUint) {
		return 0, fmt.Errorf("precisionbloom: %w: %v items at rate %v need %v bits", ErrTooManyBits, length, errorRate, size)
	}
	return uint(size), nil
}

func calculateNumHashes(size, length uint) uint {
	numHashes := uint(math.Ceil((float64(size) / float64(length)) * math.Ln2))
	if numHashes < 1 {
		return 1
	}
	return numHashes
}
