package util

import (
	"math/rand"
	"sync"
	"time"
	"unsafe"
)

const WordSize = uint(64)

var (
	src     = rand.NewSource(time.Now().UnixNano())
	srcLock sync.Mutex
)

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// WordsFor returns the number of 64 bit words needed to hold _bits_ bits
func WordsFor(bits uint) uint {
	return (bits + WordSize - 1) / WordSize
}

// BytesFor returns the number of bytes needed to hold _bits_ bits
func BytesFor(bits uint) uint {
	return (bits + 7) / 8
}

// GenerateRandomString returns an alpha string of length _n_. It's used
// to name the keys of Redis backed filters.
func GenerateRandomString(n int) string {
	srcLock.Lock()
	defer srcLock.Unlock()
	b := make([]byte, n)
	// A src.Int63() generates 63 random bits, enough for letterIdxMax characters!
	for i, cache, remain := n-1, src.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = src.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}

	return *(*string)(unsafe.Pointer(&b))
}
