package dice

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
)

// Source hands out per-evaluation generators. A crypto-seeded ChaCha8 master
// stream provides the seed material, each evaluation then rolls on a fast
// PCG generator of its own.
type Source struct {
	master *rand.ChaCha8
}

// NewSource creates a source seeded from the operating system's entropy.
func NewSource() (*Source, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed master rng: %w", err)
	}
	return NewSourceFromSeed(seed), nil
}

// NewSourceFromSeed creates a deterministic source for reproducible runs.
func NewSourceFromSeed(seed [32]byte) *Source {
	return &Source{master: rand.NewChaCha8(seed)}
}

// Roller returns a fresh generator for one evaluation.
func (s *Source) Roller() *rand.Rand {
	return rand.New(rand.NewPCG(s.master.Uint64(), s.master.Uint64()))
}
