// Package connection resolves, for each active round, the five
// role-tagged peers the node must talk to: the Issuer it requests a
// proposal from, and the four consumers it pre-seeds with transactions
// for the possible next rounds.
package connection

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/permutation"
	"github.com/luxfi/ordergate/round"
)

// Role identifies one of the five peer bindings a node maintains per
// round.
type Role int

const (
	Issuer Role = iota
	RejectRejectConsumer
	CommitRejectConsumer
	RejectCommitConsumer
	CommitCommitConsumer
)

func (r Role) String() string {
	switch r {
	case Issuer:
		return "Issuer"
	case RejectRejectConsumer:
		return "RejectRejectConsumer"
	case CommitRejectConsumer:
		return "CommitRejectConsumer"
	case RejectCommitConsumer:
		return "RejectCommitConsumer"
	case CommitCommitConsumer:
		return "CommitCommitConsumer"
	default:
		return "Unknown"
	}
}

// ErrNoPeers is returned when ledger_peers is empty: the mapping is
// undefined and the manager must refuse to expose a binding.
var ErrNoPeers = errors.New("connection: ledger_peers is empty")

// CurrentPeers is the atomically-replaced role -> peer mapping exposed to
// the request path. It is small (five peer references) and is always
// replaced whole, never mutated in place.
type CurrentPeers struct {
	Round   round.Round
	Binding map[Role]peer.Peer
}

// Peer returns the peer bound to role, if any.
func (c CurrentPeers) Peer(r Role) (peer.Peer, bool) {
	p, ok := c.Binding[r]
	return p, ok
}

// SyncOutcome is the resolution of a round as reported by the
// synchronizer.
type SyncOutcome int

const (
	Commit SyncOutcome = iota
	Reject
	Nothing
)

// SynchronizationEvent is emitted by the synchronizer after it resolves a
// round.
type SynchronizationEvent struct {
	Round       round.Round
	Outcome     SyncOutcome
	LedgerState peer.LedgerState
}

// Manager computes CurrentPeers on every SynchronizationEvent and exposes
// it atomically: one writer (the sync-event consumer), many readers
// (request dispatch).
type Manager struct {
	log log.Logger

	window permutation.Window
	current atomic.Pointer[CurrentPeers]

	warnOnce sync.Once
}

// New returns a Manager primed with the two configured initial hashes.
func New(logger log.Logger, initialHashes [2]ids.ID) *Manager {
	m := &Manager{log: logger}
	m.window.Prime(initialHashes[0], initialHashes[1])
	return m
}

// OnSynchronizationEvent recomputes CurrentPeers for e and publishes it.
// It returns the newly computed round (base round advanced per e's
// outcome) so the caller (the gate) can use it without re-deriving it.
func (m *Manager) OnSynchronizationEvent(e SynchronizationEvent, committedHash *ids.ID) (round.Round, error) {
	if committedHash != nil {
		m.window.Push(*committedHash)
	}

	set := e.LedgerState.Set()
	n := set.Len()
	if n == 0 {
		m.current.Store(nil)
		return round.Round{}, ErrNoPeers
	}
	if n < 5 {
		m.warnOnce.Do(func() {
			m.log.Warn("ledger has fewer than five peers; role bindings may collapse onto the same peer",
				"peerCount", n,
			)
		})
	}

	perms, ok := permutation.Derive(&m.window, n)
	if !ok {
		m.current.Store(nil)
		return round.Round{}, ErrNoPeers
	}

	current := e.Round
	switch e.Outcome {
	case Commit:
		current = round.NextCommit(e.Round)
	default:
		// Reject and Nothing both advance the reject round; see
		// DESIGN.md "Open Question decisions" #2.
		current = round.NextReject(e.Round)
	}

	// The permutation oracle indexes positionally into the ledger's
	// ordered peer list; validators.Set.List() preserves that order
	// (see peer.LedgerState.Set), so it is the single source of truth
	// for "which peer sits at index i" here instead of re-walking
	// LedgerPeers directly.
	ordered := set.List()
	byID := make(map[ids.NodeID]peer.Peer, n)
	for _, p := range e.LedgerState.LedgerPeers {
		byID[p.ID()] = p
	}
	resolve := func(idx int) peer.Peer {
		return byID[ordered[idx].ID()]
	}

	binding := map[Role]peer.Peer{
		Issuer:               resolve(perms.CurrentRound[int(current.RejectRound)%n]),
		RejectRejectConsumer: resolve(perms.CurrentRound[int(round.CurrentRejectConsumer(current.RejectRound))%n]),
		RejectCommitConsumer: resolve(perms.NextRound[round.NextCommitConsumer%n]),
		CommitRejectConsumer: resolve(perms.NextRound[round.NextRejectConsumer%n]),
		CommitCommitConsumer: resolve(perms.RoundAfterNext[round.NextCommitConsumer%n]),
	}

	m.current.Store(&CurrentPeers{Round: current, Binding: binding})
	return current, nil
}

// Current returns a snapshot of the current role -> peer bindings, or
// false if no well-formed binding is available (the gate should stall
// until the next well-formed event).
func (m *Manager) Current() (CurrentPeers, bool) {
	cp := m.current.Load()
	if cp == nil {
		return CurrentPeers{}, false
	}
	// Copy-on-read: the map is small, copying is cheaper than locking a
	// partial structure.
	snapshot := CurrentPeers{Round: cp.Round, Binding: make(map[Role]peer.Peer, len(cp.Binding))}
	maps.Copy(snapshot.Binding, cp.Binding)
	return snapshot, true
}
