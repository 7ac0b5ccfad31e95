package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Picker draws uniformly distributed indexes in [0, n).
type Picker interface {
	Intn(n int) int
}

// Source is a seedable Picker safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a deterministic Source for seed.
func NewSource(seed int64) *Source {
	return &Source{rnd: rand.New(rand.NewSource(seed))}
}

// NewSourceFromSeed uses seed when non-zero and a crypto-random seed otherwise.
func NewSourceFromSeed(seed int64) (*Source, error) {
	if seed != 0 {
		return NewSource(seed), nil
	}
	s, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSource(s), nil
}

func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

