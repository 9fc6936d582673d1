package precisionbloom

import (
	"github.com/goccy/go-json"
)

// Status is a point in time snapshot of a filter's shape, fill level and
// accuracy, meant for monitoring
type Status struct {
	NumBits                      uint    `json:"numBits"`
	NumHashes                    uint    `json:"numHashes"`
	ExpectedItems                uint    `json:"expectedItems"`
	ItemsInserted                uint    `json:"itemsInserted"`
	QueriesPerformed             uint    `json:"queriesPerformed"`
	FillRatio                    float64 `json:"fillRatio"`
	Saturation                   float64 `json:"saturation"`
	TheoreticalFalsePositiveRate float64 `json:"theoreticalFalsePositiveRate"`
	ActualFalsePositiveRate      float64 `json:"actualFalsePositiveRate"`
	EstimatedFalsePositiveRate   float64 `json:"estimatedFalsePositiveRate"`
	Overfilled                   bool    `json:"overfilled"`
	OverfillAmount               uint    `json:"overfillAmount"`
}

// Stats returns a Status snapshot of the filter
func (bloomFilter *BloomFilter) Stats() (Status, error) {
	saturation, err := bloomFilter.Saturation()
	if err != nil {
		return Status{}, err
	}
	tracker := bloomFilter.tracker
	return Status{
		NumBits:                      bloomFilter.params.NumBits,
		NumHashes:                    bloomFilter.params.NumHashes,
		ExpectedItems:                bloomFilter.params.ExpectedItems,
		ItemsInserted:                tracker.ItemsInserted(),
		QueriesPerformed:             tracker.QueriesPerformed(),
		FillRatio:                    tracker.FillRatio(),
		Saturation:                   saturation,
		TheoreticalFalsePositiveRate: tracker.TheoreticalFalsePositiveRate(),
		ActualFalsePositiveRate:      tracker.ActualFalsePositiveRate(),
		EstimatedFalsePositiveRate:   estimateFromSaturation(saturation, bloomFilter.params.NumHashes),
		Overfilled:                   tracker.IsOverfilled(),
		OverfillAmount:               tracker.OverfillAmount(),
	}, nil
}

// JSON returns the JSON encoding of the snapshot
func (status Status) JSON() ([]byte, error) {
	return json.Marshal(status)
}
