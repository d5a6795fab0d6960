package prose

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform draws in [0, n). Implementations shared across
// goroutines must be safe for concurrent use. *rand.Rand satisfies Source
// but is not safe for concurrent use on its own.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the runtime's goroutine-safe generator.
func DefaultSource() Source { return globalSource{} }

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// NewSeededSource returns a reproducible, goroutine-safe Source.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
