package services

import (
	"math/rand"
	"time"
)

// Clock supplies the current time. Production code uses SystemClock; tests
// substitute a fixed clock so expiry and timestamps are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}

// Rand is the randomness source for sampling and shuffling. The subset seen
// by samplers is small enough to fake with a seeded *rand.Rand.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSeededRand returns a deterministic Rand for tests and replay.
func NewSeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// NewTimeRand returns a Rand seeded from the current time.
func NewTimeRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
