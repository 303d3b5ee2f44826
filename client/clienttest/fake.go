// Package clienttest provides a hand-written in-memory client.Factory for
// tests: plain recording structs, not a generated mock.
package clienttest

import (
	"context"
	"errors"
	"sync"

	"github.com/luxfi/ordergate/client"
	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
)

// ErrNoClient is returned by Factory.CreateClient for peers that were
// not pre-registered with Set, simulating a NetworkTransient
// "channel creation failed" condition.
var ErrNoClient = errors.New("clienttest: no client registered for peer")

// Factory is an in-memory client.Factory keyed by peer address.
type Factory struct {
	mu      sync.Mutex
	clients map[string]*FakeClient
}

// NewFactory returns an empty Factory.
func NewFactory() *Factory {
	return &Factory{clients: make(map[string]*FakeClient)}
}

// Set registers c as the client returned for p.
func (f *Factory) Set(p peer.Peer, c *FakeClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[p.Address] = c
}

// CreateClient implements client.Factory.
func (f *Factory) CreateClient(p peer.Peer) (client.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[p.Address]
	if !ok {
		return nil, ErrNoClient
	}
	return c, nil
}

// FakeClient records every call made to it and returns pre-programmed
// responses.
type FakeClient struct {
	mu sync.Mutex

	ProposalResponse wire.Proposal
	ProposalErr      error
	RequestedRounds  []round.Round

	PushedBatches []wire.Batch
	PushErr       error

	SentStates []wire.State
	SendErr    error

	closed bool
}

func (c *FakeClient) RequestProposal(_ context.Context, r round.Round) (wire.Proposal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RequestedRounds = append(c.RequestedRounds, r)
	if c.ProposalErr != nil {
		return wire.Proposal{}, c.ProposalErr
	}
	return c.ProposalResponse, nil
}

func (c *FakeClient) PushBatch(_ context.Context, b wire.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PushedBatches = append(c.PushedBatches, b)
	return c.PushErr
}

func (c *FakeClient) SendState(_ context.Context, s wire.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SentStates = append(c.SentStates, s)
	return c.SendErr
}

func (c *FakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *FakeClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
