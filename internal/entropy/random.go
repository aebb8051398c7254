// Package entropy provides seeded randomness for stochastic perception.
// Each agent owns an independent Source so concurrent decision calls
// never contend and replays are reproducible from the world seed.
// Falls back to crypto/rand for seeding when no seed is given.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Source is a lockable pseudo-random stream.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a Source from a seed. Seed 0 draws a seed from
// crypto/rand instead.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = cryptoSeed()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Fork derives an independent child stream. Children created with the
// same parent seed and id are identical across runs.
func (s *Source) Fork(id uint64) *Source {
	s.mu.Lock()
	base := s.rng.Int63()
	s.mu.Unlock()
	return NewSource(base ^ int64(id*0x9e3779b97f4a7c15))
}

// Float returns a random float64 in [0, 1).
func (s *Source) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Intn returns a random int in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// cryptoSeed derives a seed from crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Should never happen; an arbitrary constant keeps us running.
		return 0x5eed
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
