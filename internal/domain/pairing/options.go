package pairing

import "math/rand"

// Option applies a configuration option to the Former.
type Option func(*Former)

// WithRand sets the random source, allowing deterministic pairing in tests.
func WithRand(rng *rand.Rand) Option {
	return func(f *Former) {
		if rng != nil {
			f.rng = rng
		}
	}
}
