package market

import (
	"math/rand"
	"time"
)

// MinPrice floors the simulated walk. The raw walk multiplies by (1 + X)
// with X normally distributed, so a draw below -100% would flip the price
// negative; the floor keeps the positive-price invariant unconditional.
const MinPrice = 0.01

// Simulator advances a synthetic price as a multiplicative random walk with
// a slight upward bias: each step scales the price by (1 + X) where
// X ~ N(0.001, 0.015).
type Simulator struct {
	drift  float64
	stddev float64
	rng    *rand.Rand
}

// NewSimulator creates a price simulator. A nil rng is seeded from the
// clock; tests pass a seeded source for determinism.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		drift:  0.001,
		stddev: 0.015,
		rng:    rng,
	}
}

// NextPrice returns the next price in the walk.
func (s *Simulator) NextPrice(current float64) float64 {
	change := s.rng.NormFloat64()*s.stddev + s.drift
	next := current * (1 + change)
	if next < MinPrice {
		next = MinPrice
	}
	return next
}
