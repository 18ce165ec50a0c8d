// Package random seeds math/rand generators from crypto/rand so outcome
// draws stay unpredictable across processes while remaining replayable from
// a captured seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed draws a high-entropy seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator seeded from crypto/rand, falling back to the
// wall clock when the entropy source is unavailable.
func NewRand() *rand.Rand {
	seed, err := NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
