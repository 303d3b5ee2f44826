package permutation

import "github.com/luxfi/ids"

// Window holds the three most recently committed block hashes used to
// seed a round's permutations, labeled CurrentRound, NextRound, and
// RoundAfterNext. It is primed at startup with the two configured
// initial_hashes (genesis and pre-genesis primers) and is then extended
// one hash at a time as blocks commit.
//
// An implementation must not serve ordering requests before the window
// is primed; Primed reports whether three hashes are available.
type Window struct {
	h0, h1, h2 ids.ID
	primed     bool
}

// Prime seeds the window with the genesis and pre-genesis hashes. The
// third slot is filled by the first real committed block via Push.
func (w *Window) Prime(preGenesis, genesis ids.ID) {
	w.h0, w.h1, w.h2 = preGenesis, genesis, genesis
	w.primed = true
}

// Push slides the window forward with a newly committed block hash.
func (w *Window) Push(h ids.ID) {
	w.h0, w.h1, w.h2 = w.h1, w.h2, h
}

// Primed reports whether the window has been seeded with Prime.
func (w *Window) Primed() bool {
	return w.primed
}

// Hashes returns the three most recent hashes in commit order
// (oldest first): H0, H1, H2.
func (w *Window) Hashes() (ids.ID, ids.ID, ids.ID) {
	return w.h0, w.h1, w.h2
}
