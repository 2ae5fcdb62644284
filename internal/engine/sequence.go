package engine

import (
	"math/rand"
	"sync"
)

// Sequence picks the starting offset used when drawing filler questions from a pool.
type Sequence interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// FixedSequence always starts at the same offset, modulo the pool size.
type FixedSequence int

func (s FixedSequence) Intn(n int) int {
	v := int(s) % n
	if v < 0 {
		v += n
	}
	return v
}

type randomSequence struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSequence returns a Sequence safe for concurrent use.
func NewRandomSequence(seed int64) Sequence {
	return &randomSequence{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomSequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
