// Package yac is the voting transport: it ships vote bundles ("State"
// messages) between consensus nodes. Sends are fire-and-forget rather
// than request/response — a vote is broadcast, not answered.
package yac

import (
	"context"
	"errors"
	"sync"
	"weak"

	"github.com/luxfi/log"

	"github.com/luxfi/ordergate/client"
	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/wire"
)

// ErrEmptyVoteBundle and ErrMixedRoundVoteBundle are returned by
// ReceiveState for a malformed bundle. Both are ProtocolInvalid errors:
// the caller reports a non-retry cancelled status upstream and must not
// resend the same payload.
var (
	ErrEmptyVoteBundle      = errors.New("yac: empty vote bundle")
	ErrMixedRoundVoteBundle = errors.New("yac: votes span more than one round")
)

// Handler receives vote bundles accepted by ReceiveState. Network holds
// only a weak reference to it: the handler is the consensus state
// machine, which owns a strong reference back to the Network, and one
// direction of that cycle must be weak.
type Handler struct {
	OnState func(from peer.Peer, votes []wire.Vote)
}

// Network is the voting transport for a single node.
type Network struct {
	log     log.Logger
	factory client.Factory

	stopMu  sync.Mutex
	stopped bool

	handlerMu sync.Mutex
	handler   weak.Pointer[Handler]
}

// New returns a Network with no subscriber attached.
func New(logger log.Logger, factory client.Factory) *Network {
	return &Network{log: logger, factory: factory}
}

// SendState serializes votes as a State message and fires it at peer
// without waiting for a reply. If the transport is stopped the send is
// dropped with a warning. Each call dials and sends on its own
// goroutine, so delivery order is not guaranteed, neither between
// distinct destinations nor between successive sends to the same
// destination.
func (n *Network) SendState(p peer.Peer, votes []wire.Vote) {
	n.stopMu.Lock()
	stopped := n.stopped
	n.stopMu.Unlock()
	if stopped {
		n.log.Warn("send_state dropped: transport stopped", "peer", p.Address)
		return
	}

	go n.dispatch(p, votes)
}

func (n *Network) dispatch(p peer.Peer, votes []wire.Vote) {
	c, err := n.factory.CreateClient(p)
	if err != nil {
		n.log.Warn("send_state: channel unavailable", "peer", p.Address, "error", err)
		return
	}
	defer c.Close()

	if err := c.SendState(context.Background(), wire.State{Votes: votes}); err != nil {
		n.log.Warn("send_state: transient send failure", "peer", p.Address, "error", err)
	}
}

// ReceiveState is invoked by the inbound handler with a freshly received
// vote bundle. It rejects malformed bundles (empty, or votes spanning
// more than one round) without ever reaching the subscriber. A
// well-formed bundle is hand off to the subscribed Handler; with none
// attached (or one since garbage collected), it is logged and dropped.
func (n *Network) ReceiveState(from peer.Peer, votes []wire.Vote) error {
	if !wire.ValidateBundle(votes) {
		if len(votes) == 0 {
			return ErrEmptyVoteBundle
		}
		return ErrMixedRoundVoteBundle
	}

	n.handlerMu.Lock()
	weakHandler := n.handler
	n.handlerMu.Unlock()

	h := weakHandler.Value()
	if h == nil {
		n.log.Warn("receive_state: no subscriber attached", "peer", from.Address)
		return nil
	}
	h.OnState(from, votes)
	return nil
}

// Subscribe registers h as the single notifications handler, replacing
// whatever was previously subscribed. The caller retains ownership: h
// must stay alive on the caller's side (typically the consensus state
// machine holding it alongside its own strong reference to Network) or
// it becomes eligible for collection and future ReceiveState calls will
// silently drop.
func (n *Network) Subscribe(h *Handler) {
	n.handlerMu.Lock()
	defer n.handlerMu.Unlock()
	n.handler = weak.Make(h)
}

// Stop sets the stop flag under lock. Idempotent: calling it twice has
// no additional effect. Subsequent SendState calls drop silently.
func (n *Network) Stop() {
	n.stopMu.Lock()
	defer n.stopMu.Unlock()
	n.stopped = true
}

// Stopped reports whether Stop has been called.
func (n *Network) Stopped() bool {
	n.stopMu.Lock()
	defer n.stopMu.Unlock()
	return n.stopped
}
