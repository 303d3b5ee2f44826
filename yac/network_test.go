package yac_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ordergate/client/clienttest"
	ordergatelog "github.com/luxfi/ordergate/log"
	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
	"github.com/luxfi/ordergate/yac"
)

func vote(r round.Round) wire.Vote {
	return wire.Vote{Round: r}
}

func TestReceiveStateRejectsEmptyBundle(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	called := false
	net.Subscribe(&yac.Handler{OnState: func(peer.Peer, []wire.Vote) { called = true }})

	err := net.ReceiveState(peer.Peer{}, nil)
	require.ErrorIs(t, err, yac.ErrEmptyVoteBundle)
	require.False(t, called)
}

func TestReceiveStateRejectsMixedRoundBundle(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	called := false
	net.Subscribe(&yac.Handler{OnState: func(peer.Peer, []wire.Vote) { called = true }})

	err := net.ReceiveState(peer.Peer{}, []wire.Vote{
		vote(round.New(5, 0)),
		vote(round.New(5, 1)),
	})
	require.ErrorIs(t, err, yac.ErrMixedRoundVoteBundle)
	require.False(t, called)
}

func TestReceiveStateHandsOffWellFormedBundle(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	var got []wire.Vote
	var gotFrom peer.Peer
	net.Subscribe(&yac.Handler{OnState: func(from peer.Peer, votes []wire.Vote) {
		gotFrom = from
		got = votes
	}})

	from := peer.Peer{Address: "peer-1"}
	votes := []wire.Vote{vote(round.New(5, 0)), vote(round.New(5, 0))}
	err := net.ReceiveState(from, votes)
	require.NoError(t, err)
	require.Equal(t, from, gotFrom)
	require.Equal(t, votes, got)
}

func TestReceiveStateDropsSilentlyWithNoSubscriber(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	err := net.ReceiveState(peer.Peer{}, []wire.Vote{vote(round.New(5, 0))})
	require.NoError(t, err)
}

func TestSubscribeReplacesPriorHandler(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	firstCalled, secondCalled := false, false
	first := &yac.Handler{OnState: func(peer.Peer, []wire.Vote) { firstCalled = true }}
	second := &yac.Handler{OnState: func(peer.Peer, []wire.Vote) { secondCalled = true }}

	net.Subscribe(first)
	net.Subscribe(second)

	require.NoError(t, net.ReceiveState(peer.Peer{}, []wire.Vote{vote(round.New(1, 0))}))
	require.False(t, firstCalled)
	require.True(t, secondCalled)
	runtime.KeepAlive(first)
}

func TestSendStateDialsFactoryAndDeliversState(t *testing.T) {
	factory := clienttest.NewFactory()
	fake := &clienttest.FakeClient{}
	p := peer.Peer{Address: "peer-1"}
	factory.Set(p, fake)

	net := yac.New(ordergatelog.NewNoOpLogger(), factory)
	votes := []wire.Vote{vote(round.New(1, 0))}
	net.SendState(p, votes)

	require.Eventually(t, func() bool {
		return len(fake.SentStates) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, votes, fake.SentStates[0].Votes)
}

func TestStopSilencesSendsAndNeverDialsFactory(t *testing.T) {
	factory := clienttest.NewFactory()
	fake := &clienttest.FakeClient{}
	p := peer.Peer{Address: "peer-X"}
	factory.Set(p, fake)

	net := yac.New(ordergatelog.NewNoOpLogger(), factory)
	net.Stop()
	require.True(t, net.Stopped())

	net.SendState(p, []wire.Vote{vote(round.New(1, 0))})

	// give any errant goroutine a chance to run before asserting absence
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, fake.SentStates)

	// idempotent
	net.Stop()
	require.True(t, net.Stopped())
}

func TestHandlerBecomesUnreachableAfterCollection(t *testing.T) {
	net := yac.New(ordergatelog.NewNoOpLogger(), clienttest.NewFactory())

	func() {
		h := &yac.Handler{OnState: func(peer.Peer, []wire.Vote) {}}
		net.Subscribe(h)
	}()

	runtime.GC()
	runtime.GC()

	err := net.ReceiveState(peer.Peer{}, []wire.Vote{vote(round.New(1, 0))})
	require.NoError(t, err)
}
