// Package permutation derives deterministic per-round peer permutations
// from committed block hashes. Every honest node must produce
// byte-identical permutations given identical inputs: this is a
// consensus-critical determinism property, not merely an engineering
// convenience.
package permutation

import (
	"encoding/binary"
	"math/rand"

	"github.com/luxfi/ids"
)

// Permutations is the triple of per-round peer permutations derived from
// a Window: CurrentRound uses H0, NextRound uses H1, RoundAfterNext uses
// H2.
type Permutations struct {
	CurrentRound   []int
	NextRound      []int
	RoundAfterNext []int
}

// Derive computes the three permutations of [0, n) for the hashes held in
// w. It returns false if the window has not been primed or n is zero —
// callers must not serve ordering requests in that state.
func Derive(w *Window, n int) (Permutations, bool) {
	if !w.Primed() || n == 0 {
		return Permutations{}, false
	}
	h0, h1, h2 := w.Hashes()
	return Permutations{
		CurrentRound:   Shuffle(h0, n),
		NextRound:      Shuffle(h1, n),
		RoundAfterNext: Shuffle(h2, n),
	}, true
}

// Shuffle returns a deterministic permutation of [0, n) seeded from hash.
// It seeds a PRNG with the hash bytes and runs an explicit Fisher–Yates
// shuffle: the algorithm, not just the output, must match byte-for-byte
// across every implementation of this spec, so it is spelled out here
// rather than delegated to an unspecified standard-library shuffle.
func Shuffle(hash ids.ID, n int) []int {
	if n == 0 {
		return nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewSource(seed(hash)))
	for i := n - 1; i > 0; i-- {
		j := int(rng.Int63n(int64(i + 1)))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// seed derives a PRNG seed from the leading 8 bytes of a block hash.
func seed(hash ids.ID) int64 {
	return int64(binary.BigEndian.Uint64(hash[:8]))
}
