package arbitrage

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource supplies uniform values in [0, 1) for the modeled, randomized
// cost terms (gas surcharge, latency risk, liquidity bonus).
type RandomSource interface {
	Float64() float64
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a goroutine-safe RandomSource seeded from the clock.
func NewRandomSource() RandomSource {
	return NewSeededRandomSource(time.Now().UnixNano())
}

func NewSeededRandomSource(seed int64) RandomSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// FixedRandom always returns the same value.
type FixedRandom float64

func (f FixedRandom) Float64() float64 {
	return float64(f)
}

// SequenceRandom replays values in order, cycling when exhausted.
type SequenceRandom struct {
	mu     sync.Mutex
	values []float64
	next   int
}

func NewSequenceRandom(values ...float64) *SequenceRandom {
	return &SequenceRandom{values: values}
}

func (s *SequenceRandom) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
