// Package randx provides a concurrency-safe seedable random source.
package randx

import (
	"math/rand/v2"
	"sync"
)

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

// New returns a *rand.Rand seeded with seed that may be shared between
// goroutines.
func New(seed uint64) *rand.Rand {
	return rand.New(&lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)})
}

// Random returns a shared-safe *rand.Rand with an unpredictable seed.
func Random() *rand.Rand {
	return New(rand.Uint64())
}
