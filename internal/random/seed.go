// Package random supplies seeds for reproducible dice rolls.
//
// A roll is a pure function of its seed, so persisting the seed is enough to
// replay or audit any roll.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// Source yields the seed for one roll.
type Source func() (int64, error)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Fixed returns a Source that always yields seed.
func Fixed(seed int64) Source {
	return func() (int64, error) { return seed, nil }
}

// Sequence returns a Source that yields seeds in order and then repeats the
// last one. An empty sequence yields zero.
func Sequence(seeds ...int64) Source {
	next := 0
	return func() (int64, error) {
		if len(seeds) == 0 {
			return 0, nil
		}
		seed := seeds[next]
		if next < len(seeds)-1 {
			next++
		}
		return seed, nil
	}
}
