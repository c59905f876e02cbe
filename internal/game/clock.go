package game

import (
	"math/rand/v2"
	"time"
)

// Clock supplies the current time. The engine never sleeps; it compares
// deadlines against Now on every call.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Rand picks hint targets.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewSeededRand returns a reproducible Rand.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithRand(r Rand) Option {
	return func(s *Session) { s.rng = r }
}
