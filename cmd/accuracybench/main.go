// Command accuracybench fills a filter to capacity, checks that every
// inserted item is still reported and measures the false positive rate on
// items that were never inserted.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kwertop/precisionbloom"
)

type Options struct {
	Items      uint
	FPR        float64
	Multiplier uint
	Primary    precisionbloom.HashAlgorithm
	Secondary  precisionbloom.HashAlgorithm
	RedisURI   string
	JSON       bool
	Verbose    bool
}

type Result struct {
	Status         precisionbloom.Status
	FalseNegatives uint
	FalsePositives uint
	Tested         uint
	MeasuredFPR    float64
}

func ParseFlags(args []string, output io.Writer) (Options, bool) {
	fs := flag.NewFlagSet("accuracybench", flag.ContinueOnError)
	fs.SetOutput(output)
	items := fs.Uint("items", 10000, "Number of items to insert, also the filter capacity")
	fpr := fs.Float64("fpr", 0.01, "Target false positive rate")
	multiplier := fs.Uint("multiplier", 5, "Items tested for false positives, as a multiple of -items")
	primary := fs.String("primary", precisionbloom.AlgXXHash.String(), "Primary hash algorithm")
	secondary := fs.String("secondary", precisionbloom.AlgMetro.String(), "Secondary hash algorithm")
	redisURI := fs.String("redis", "", "Redis URI (e.g. redis://localhost:6379/0), in-memory filter when empty")
	asJSON := fs.Bool("json", false, "Print the filter status as JSON")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, false
	}

	primaryAlg, err := precisionbloom.ParseHashAlgorithm(*primary)
	if err != nil {
		fmt.Fprintln(output, "Error:", err)
		return Options{}, false
	}
	secondaryAlg, err := precisionbloom.ParseHashAlgorithm(*secondary)
	if err != nil {
		fmt.Fprintln(output, "Error:", err)
		return Options{}, false
	}
	if *multiplier == 0 {
		fmt.Fprintln(output, "Error: -multiplier must be at least 1")
		fs.Usage()
		return Options{}, false
	}
	return Options{
		Items:      *items,
		FPR:        *fpr,
		Multiplier: *multiplier,
		Primary:    primaryAlg,
		Secondary:  secondaryAlg,
		RedisURI:   *redisURI,
		JSON:       *asJSON,
		Verbose:    *verbose,
	}, true
}

func NewLogger(out io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

func newFilter(opts Options) (*precisionbloom.BloomFilter, error) {
	if opts.RedisURI != "" {
		connOptions, err := precisionbloom.ParseRedisURI(opts.RedisURI)
		if err != nil {
			return nil, err
		}
		precisionbloom.MakeRedisClient(*connOptions)
		return precisionbloom.NewRedisBloomFilterWithAlgorithms(opts.Items, opts.FPR, opts.Primary, opts.Secondary)
	}
	params, err := precisionbloom.NewParametersFromItemCount(opts.Items, opts.FPR)
	if err != nil {
		return nil, err
	}
	hashes, err := precisionbloom.NewHashPair(opts.Primary, opts.Secondary)
	if err != nil {
		return nil, err
	}
	bitset, err := precisionbloom.NewBitSetMem(params.NumBits)
	if err != nil {
		return nil, err
	}
	return precisionbloom.NewBloomFilterWithBitSet(params, bitset, hashes)
}

func Run(opts Options, log *slog.Logger) (Result, error) {
	filter, err := newFilter(opts)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := filter.Delete(); err != nil {
			log.Warn("failed to delete filter", "err", err)
		}
	}()
	log.Info("filter created",
		"bits", filter.NumBits(),
		"hashes", filter.NumHashes(),
		"bitsPerItem", filter.Parameters().BitsPerItem(),
		"primary", opts.Primary.String(),
		"secondary", opts.Secondary.String(),
		"redis", opts.RedisURI != "")

	item := make([]byte, 8)
	contains := func(i uint64) (bool, error) {
		binary.LittleEndian.PutUint64(item, i)
		return filter.Contains(item)
	}

	items := uint64(opts.Items)
	for i := uint64(0); i < items; i++ {
		binary.LittleEndian.PutUint64(item, i)
		if _, err := filter.Insert(item); err != nil {
			return Result{}, err
		}
	}
	log.Debug("items inserted", "items", items)

	var result Result
	for i := uint64(0); i < items; i++ {
		ok, err := contains(i)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			result.FalseNegatives++
			log.Error("false negative", "item", i)
		}
	}

	result.Tested = opts.Items * opts.Multiplier
	for i := items; i < items+uint64(result.Tested); i++ {
		ok, err := contains(i)
		if err != nil {
			return Result{}, err
		}
		if ok {
			result.FalsePositives++
		}
	}
	result.MeasuredFPR = float64(result.FalsePositives) / float64(result.Tested)

	if result.Status, err = filter.Stats(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func main() {
	opts, ok := ParseFlags(os.Args[1:], os.Stderr)
	if !ok {
		os.Exit(2)
	}
	log := NewLogger(os.Stderr, opts.Verbose)

	result, err := Run(opts, log)
	if err != nil {
		log.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
	log.Info("accuracy measured",
		"saturation", result.Status.Saturation,
		"theoreticalFPR", result.Status.TheoreticalFalsePositiveRate,
		"actualFPR", result.Status.ActualFalsePositiveRate,
		"tested", result.Tested,
		"falsePositives", result.FalsePositives,
		"measuredFPR", result.MeasuredFPR,
		"ratio", result.MeasuredFPR/opts.FPR)

	if opts.JSON {
		data, err := result.Status.JSON()
		if err != nil {
			log.Error("failed to encode status", "err", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	}

	if result.FalseNegatives > 0 {
		log.Error("false negatives found", "count", result.FalseNegatives)
		os.Exit(1)
	}
}
