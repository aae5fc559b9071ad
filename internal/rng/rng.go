package rng

import (
	"math/rand"
	"time"
)

// Source wraps a seeded math/rand generator so runs can be replayed.
// Accessed only from the tick goroutine.
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New creates a source. A zero seed selects a time-based one.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

func (s *Source) Seed() int64 { return s.seed }

// NextInt returns a uniform integer in [low, highExclusive). An empty range
// yields low.
func (s *Source) NextInt(low, highExclusive int) int {
	if highExclusive <= low {
		return low
	}
	return low + s.rng.Intn(highExclusive-low)
}
