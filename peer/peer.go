// Package peer defines the Peer and LedgerState types shared by the
// connection manager, ordering service, and voting transport. LedgerState
// exposes its peers through the validators.Set/Validator abstraction
// (Has/List/Light/Sample) rather than a bespoke slice walk.
package peer

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/validators"
)

// Peer is a single member of the ledger's peer set. Identity is the
// public key; address and TLS certificate are transport details.
type Peer struct {
	Address        string
	PublicKey      []byte
	TLSCertificate []byte // optional
}

// ID derives a stable node identity from the peer's public key.
func (p Peer) ID() ids.NodeID {
	var id ids.NodeID
	copy(id[:], p.PublicKey)
	return id
}

// Light implements validators.Validator. Ledger peers in this core are
// equally weighted: BFT quorum here is a function of peer count, not
// stake, so every peer reports a light of 1.
func (p Peer) Light() uint64 {
	return 1
}

// LedgerState is an immutable snapshot produced by the synchronizer. Its
// lifetime is the longest-lived round that still references it.
type LedgerState struct {
	LedgerPeers []Peer
}

// N returns the number of peers in the ledger snapshot.
func (s LedgerState) N() int {
	return len(s.LedgerPeers)
}

// Set adapts LedgerPeers to validators.Set, preserving LedgerPeers'
// order so callers needing positional indexing (the permutation oracle's
// consumers) see the same ordering List() would.
func (s LedgerState) Set() validators.Set {
	return ledgerSet(s.LedgerPeers)
}

type ledgerSet []Peer

func (s ledgerSet) Has(id ids.NodeID) bool {
	for _, p := range s {
		if p.ID() == id {
			return true
		}
	}
	return false
}

func (s ledgerSet) Len() int {
	return len(s)
}

func (s ledgerSet) List() []validators.Validator {
	out := make([]validators.Validator, len(s))
	for i, p := range s {
		out[i] = &validators.ValidatorImpl{NodeID: p.ID(), LightVal: p.Light()}
	}
	return out
}

func (s ledgerSet) Light() uint64 {
	return uint64(len(s))
}

func (s ledgerSet) Sample(size int) ([]ids.NodeID, error) {
	if size > len(s) {
		return nil, fmt.Errorf("peer: sample size %d exceeds ledger size %d", size, len(s))
	}
	out := make([]ids.NodeID, size)
	for i := 0; i < size; i++ {
		out[i] = s[i].ID()
	}
	return out, nil
}
