package ordering_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	ordergatelog "github.com/luxfi/ordergate/log"
	"github.com/luxfi/ordergate/ordering"
	"github.com/luxfi/ordergate/presence/presencetest"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
)

func newService(t *testing.T, maxTxs uint32, now ordering.Clock) (*ordering.Service, *presencetest.Cache) {
	t.Helper()
	cache := presencetest.New()
	svc, err := ordering.New(ordergatelog.NewNoOpLogger(), cache, ordering.AlwaysCreate{}, maxTxs, now, prometheus.NewRegistry())
	require.NoError(t, err)
	return svc, cache
}

func txWithHash(b byte) wire.Tx {
	var h ids.ID
	h[31] = b
	return wire.Tx{Hash: h, Payload: []byte{b}}
}

func TestOnBatchAdmitsUniqueTxs(t *testing.T) {
	svc, _ := newService(t, 10, nil)

	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1), txWithHash(2)}})
	require.Equal(t, 2, svc.PendingCount())

	// duplicate hash is dropped
	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1)}})
	require.Equal(t, 2, svc.PendingCount())
}

func TestOnBatchDropsAlreadyFinalTx(t *testing.T) {
	svc, cache := newService(t, 10, nil)

	committed := txWithHash(7)
	cache.MarkCommitted(committed.Hash)

	svc.OnBatch(wire.Batch{Txs: []wire.Tx{committed, txWithHash(9)}})
	require.Equal(t, 1, svc.PendingCount())
}

func TestOnRequestProposalAssemblesFIFOUpToMax(t *testing.T) {
	svc, _ := newService(t, 2, nil)

	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1), txWithHash(2), txWithHash(3)}})

	r := round.Genesis(0)
	p, err := svc.OnRequestProposal(r)
	require.NoError(t, err)
	require.False(t, p.Empty())
	require.Len(t, p.Txs, 2)
	require.Equal(t, byte(1), p.Txs[0].Payload[0])
	require.Equal(t, byte(2), p.Txs[1].Payload[0])

	// the third tx remains pending, the first two were consumed
	require.Equal(t, 1, svc.PendingCount())
	require.Equal(t, uint64(1), svc.ServedCount())
}

func TestOnRequestProposalIsCachedPerRound(t *testing.T) {
	svc, _ := newService(t, 10, nil)
	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1)}})

	r := round.Genesis(0)
	first, err := svc.OnRequestProposal(r)
	require.NoError(t, err)
	require.False(t, first.Empty())

	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(2)}})

	second, err := svc.OnRequestProposal(r)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestOnRequestProposalEmptyWhenNoPending(t *testing.T) {
	svc, _ := newService(t, 10, nil)

	p, err := svc.OnRequestProposal(round.Genesis(0))
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestOnRequestProposalTieBreaksByHashAscending(t *testing.T) {
	fixed := time.Unix(0, 0)
	svc, _ := newService(t, 10, func() time.Time { return fixed })

	// admitted out of hash order, but all share the same admission
	// time, so assembly must re-sort ascending by hash.
	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(3), txWithHash(1), txWithHash(2)}})

	p, err := svc.OnRequestProposal(round.Genesis(0))
	require.NoError(t, err)
	require.Len(t, p.Txs, 3)
	require.Equal(t, byte(1), p.Txs[0].Payload[0])
	require.Equal(t, byte(2), p.Txs[1].Payload[0])
	require.Equal(t, byte(3), p.Txs[2].Payload[0])
}

func TestOnRoundAdvanceEvictsStaleProposalsAndRejectsStaleRequests(t *testing.T) {
	svc, _ := newService(t, 10, nil)
	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1)}})

	old := round.Genesis(0)
	_, err := svc.OnRequestProposal(old)
	require.NoError(t, err)

	next := round.NextCommit(old)
	svc.OnRoundAdvance(next)

	_, err = svc.OnRequestProposal(old)
	require.ErrorIs(t, err, ordering.ErrStaleRound)

	// next round is not stale and has no cached proposal
	p, err := svc.OnRequestProposal(next)
	require.NoError(t, err)
	require.True(t, p.Empty())
}

func TestCreationStrategyCanSuppressProposal(t *testing.T) {
	cache := presencetest.New()
	gated := &gatedStrategy{}
	svc, err := ordering.New(ordergatelog.NewNoOpLogger(), cache, gated, 10, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	svc.OnBatch(wire.Batch{Txs: []wire.Tx{txWithHash(1)}})

	p, err := svc.OnRequestProposal(round.Genesis(0))
	require.NoError(t, err)
	require.True(t, p.Empty())
	require.Equal(t, 1, svc.PendingCount())
}

type gatedStrategy struct{}

func (*gatedStrategy) ShouldCreate(round.Round) bool { return false }
func (*gatedStrategy) OnProposal(round.Round)        {}
