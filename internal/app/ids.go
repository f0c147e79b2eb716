package app

import (
    "math/rand/v2"
    "sync/atomic"

    "github.com/google/uuid"
)

// newSessionID returns a random UUIDv4 string.
func newSessionID() string {
    return uuid.NewString()
}

// sources hands out random sources for sessions. With a non-zero seed the
// n-th source is the same across runs, which keeps tests reproducible.
type sources struct {
    seed uint64
    n    atomic.Uint64
}

func (s *sources) next() *rand.Rand {
    if s.seed == 0 {
        return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
    }
    return rand.New(rand.NewPCG(s.seed, s.n.Add(1)))
}
