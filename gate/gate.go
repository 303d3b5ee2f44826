// Package gate implements the round state machine of the local node: it
// consumes synchronization events and committed blocks, requests
// proposals from the current round's Issuer, and emits round-ready
// proposals downstream.
//
// The "combine sync-events with the three latest committed hashes"
// dataflow of Design Note §9 is realized across two collaborators
// rather than a standalone graph: connection.Manager's permutation
// window already holds the sliding window of three hashes, and Gate
// latches the hash of the most recently observed CommittedBlock so the
// next SynchronizationEvent pushes it into that window before deriving
// bindings — a combine-with-latest join with one producer and one
// consumer, not a fan-out graph.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ordergate/client"
	"github.com/luxfi/ordergate/connection"
	"github.com/luxfi/ordergate/ordering"
	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/presence"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
)

var errFailedInFlightMetric = errors.New("gate: failed to register in_flight metric")

// consumerRoles are the four v-peer bindings PropagateBatch pre-seeds
// with a freshly admitted batch, one for each of the possible next
// rounds' (Reject/Commit)×(Reject/Commit) combinations.
var consumerRoles = []connection.Role{
	connection.RejectRejectConsumer,
	connection.CommitRejectConsumer,
	connection.RejectCommitConsumer,
	connection.CommitCommitConsumer,
}

// Phase is the gate's coarse state.
type Phase int

const (
	// Idle is the initial phase: no active round, primed by the first
	// SynchronizationEvent.
	Idle Phase = iota
	AwaitingProposal
	ProposalReady
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case AwaitingProposal:
		return "AwaitingProposal"
	case ProposalReady:
		return "ProposalReady"
	default:
		return "Unknown"
	}
}

// State is a snapshot of the gate's current phase.
type State struct {
	Phase    Phase
	Round    round.Round
	Proposal wire.Proposal
}

// RoundSwitch is emitted whenever the gate advances to a new round.
type RoundSwitch struct {
	Round       round.Round
	LedgerState peer.LedgerState
}

// RoundedProposal is the gate's downstream output: a filtered proposal
// for a specific round, possibly empty (timeout or no admitted txs).
type RoundedProposal struct {
	Round    round.Round
	Proposal wire.Proposal
}

// Gate is the round state machine of the local node. It is
// single-consumer per input stream but dispatches proposal requests
// asynchronously so that intake of sync-events is never blocked on a
// network round trip.
type Gate struct {
	log      log.Logger
	conn     *connection.Manager
	factory  client.Factory
	presence presence.Cache
	ordering *ordering.Service
	delay    time.Duration

	mu          sync.Mutex
	state       State
	pendingHash *ids.ID             // latest CommittedBlock hash, latched for the next sync-event
	inFlight    map[ids.ID]struct{} // tx hashes forwarded downstream, awaiting finality

	inFlightGauge prometheus.Gauge

	roundSwitches chan RoundSwitch
	proposals     chan RoundedProposal
}

// New returns an idle Gate registering its metrics under reg. mailboxSize
// bounds the RoundSwitches and Proposals output channels; a full mailbox
// blocks the producer (the sync-event/proposal-receipt path) rather than
// dropping anything.
func New(
	logger log.Logger,
	conn *connection.Manager,
	factory client.Factory,
	presenceCache presence.Cache,
	orderingSvc *ordering.Service,
	delay time.Duration,
	mailboxSize int,
	reg prometheus.Registerer,
) (*Gate, error) {
	inFlightGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gate_inflight_txs",
		Help: "Number of transactions forwarded downstream and awaiting finality",
	})
	if err := reg.Register(inFlightGauge); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedInFlightMetric, err)
	}

	return &Gate{
		log:           logger,
		conn:          conn,
		factory:       factory,
		presence:      presenceCache,
		ordering:      orderingSvc,
		delay:         delay,
		inFlight:      make(map[ids.ID]struct{}),
		inFlightGauge: inFlightGauge,
		roundSwitches: make(chan RoundSwitch, mailboxSize),
		proposals:     make(chan RoundedProposal, mailboxSize),
	}, nil
}

// RoundSwitches is the stream of round transitions the gate has made.
func (g *Gate) RoundSwitches() <-chan RoundSwitch {
	return g.roundSwitches
}

// Proposals is the gate's output stream: a RoundedProposal for every
// round the gate completed, possibly with an empty Proposal. This
// stream never errors — timeouts and transport failures degrade to an
// empty proposal so consensus can always make progress by advancing the
// reject round.
func (g *Gate) Proposals() <-chan RoundedProposal {
	return g.proposals
}

// State returns a snapshot of the gate's current phase.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// InFlight reports whether hash is still tracked as awaiting finality.
func (g *Gate) InFlight(hash ids.ID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[hash]
	return ok
}

// OnSynchronizationEvent advances the gate to the round following e,
// superseding any in-flight AwaitingProposal: a response to the
// previous round's request that arrives after this call is discarded by
// OnProposalReceived's round check. The next round's Issuer is sent an
// asynchronous proposal request bounded by delay.
func (g *Gate) OnSynchronizationEvent(e connection.SynchronizationEvent) {
	g.mu.Lock()
	hash := g.pendingHash
	g.pendingHash = nil
	g.mu.Unlock()

	next, err := g.conn.OnSynchronizationEvent(e, hash)
	if err != nil {
		g.log.Warn("gate stalled: no well-formed peer binding", "error", err)
		return
	}

	g.mu.Lock()
	g.state = State{Phase: AwaitingProposal, Round: next}
	g.mu.Unlock()

	g.roundSwitches <- RoundSwitch{Round: next, LedgerState: e.LedgerState}

	go g.requestProposal(next)
}

// OnCommittedBlock folds a finalized block's transaction hashes into the
// gate's eviction set and latches the block hash for the next
// SynchronizationEvent's permutation-window push.
func (g *Gate) OnCommittedBlock(b wire.CommittedBlock) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, tx := range b.Transactions {
		delete(g.inFlight, tx.Hash)
	}
	for _, hash := range b.RejectedTransactionHashes {
		delete(g.inFlight, hash)
	}
	g.inFlightGauge.Set(float64(len(g.inFlight)))
	hash := b.Hash
	g.pendingHash = &hash
}

// OnProposalReceived is invoked when a proposal for r arrives, whether
// from the asynchronous Issuer request or (in tests) directly. A
// proposal for a round other than the current AwaitingProposal is
// discarded: it is either stale (a superseded round) or premature.
func (g *Gate) OnProposalReceived(r round.Round, p wire.Proposal) {
	g.mu.Lock()
	if g.state.Phase != AwaitingProposal || !g.state.Round.Equal(r) {
		g.mu.Unlock()
		g.log.Debug("discarding proposal for non-current round", "round", r)
		return
	}

	filtered := g.filterLocked(p)
	g.state = State{Phase: ProposalReady, Round: r, Proposal: filtered}
	for _, tx := range filtered.Txs {
		g.inFlight[tx.Hash] = struct{}{}
	}
	g.inFlightGauge.Set(float64(len(g.inFlight)))
	g.mu.Unlock()

	g.proposals <- RoundedProposal{Round: r, Proposal: filtered}
}

// filterLocked drops transactions already present on-chain. Callers
// must hold g.mu.
func (g *Gate) filterLocked(p wire.Proposal) wire.Proposal {
	if p.Empty() {
		return p
	}
	kept := make([]wire.Tx, 0, len(p.Txs))
	for _, tx := range p.Txs {
		if g.presence.Check(tx.Hash) == presence.Unknown {
			kept = append(kept, tx)
		}
	}
	return wire.Proposal{Txs: kept, Round: p.Round, CreatedTime: p.CreatedTime}
}

// PropagateBatch is the external batch-ingress entry point: it admits
// batch into the local ordering service, then pre-seeds the four
// consumer-role peers (whichever of the four possible next rounds
// materializes will already have the batch to assemble from) with a
// PushBatch call. Admission is synchronous; the consumer pushes are
// dispatched asynchronously so a slow or unreachable peer never blocks
// the caller.
func (g *Gate) PropagateBatch(batch wire.Batch) {
	g.ordering.OnBatch(batch)

	cp, ok := g.conn.Current()
	if !ok {
		g.log.Warn("propagate_batch: no current peer binding, batch admitted locally only")
		return
	}

	for _, role := range consumerRoles {
		p, ok := cp.Peer(role)
		if !ok {
			continue
		}
		go g.pushBatch(p, batch)
	}
}

func (g *Gate) pushBatch(p peer.Peer, batch wire.Batch) {
	c, err := g.factory.CreateClient(p)
	if err != nil {
		g.log.Warn("propagate_batch: consumer channel unavailable", "peer", p.Address, "error", err)
		return
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), g.delay)
	defer cancel()

	if err := c.PushBatch(ctx, batch); err != nil {
		g.log.Warn("propagate_batch: push failed", "peer", p.Address, "error", err)
	}
}

func (g *Gate) requestProposal(r round.Round) {
	cp, ok := g.conn.Current()
	if !ok {
		g.OnProposalReceived(r, wire.Proposal{Round: r})
		return
	}
	issuer, ok := cp.Peer(connection.Issuer)
	if !ok {
		g.OnProposalReceived(r, wire.Proposal{Round: r})
		return
	}

	c, err := g.factory.CreateClient(issuer)
	if err != nil {
		g.log.Warn("issuer channel unavailable", "round", r, "error", err)
		g.OnProposalReceived(r, wire.Proposal{Round: r})
		return
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), g.delay)
	defer cancel()

	proposal, err := c.RequestProposal(ctx, r)
	if err != nil {
		g.log.Warn("proposal request failed", "round", r, "error", err)
		proposal = wire.Proposal{Round: r}
	}
	g.OnProposalReceived(r, proposal)
}
