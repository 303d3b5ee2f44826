// Package ordering implements the per-peer proposal assembler: it admits
// transaction batches, and answers proposal requests for specific rounds
// by assembling up to max_number_of_transactions from its backlog.
package ordering

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/ordergate/presence"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
)

var (
	errFailedPendingMetric  = errors.New("ordering: failed to register pending metric")
	errFailedServedMetric   = errors.New("ordering: failed to register served metric")
	errFailedLatencyMetrics = errors.New("ordering: failed to register assembly_duration metrics")
)

// ErrStaleRound is returned by OnRequestProposal for a round the service
// has already evicted.
var ErrStaleRound = errors.New("ordering: stale round")

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// Service is a single peer's proposal assembler.
type Service struct {
	log      log.Logger
	presence presence.Cache
	strategy CreationStrategy
	maxTxs   uint32
	now      Clock

	mu       sync.Mutex
	admitted map[ids.ID]struct{} // every hash ever admitted, for duplicate suppression
	pending  []wire.Tx           // FIFO backlog of unserved transactions
	served   map[round.Round]wire.Proposal
	evicted  round.Round // the most recent on_round_advance boundary

	pendingGauge    prometheus.Gauge
	servedCounter   prometheus.Counter
	assemblyLatency metric.Averager // time spent assembling a served proposal, in ns
	served64        atomic.Uint64   // mirrors servedCounter for cheap in-process reads
}

// New returns a Service registering its metrics under reg.
func New(
	logger log.Logger,
	presenceCache presence.Cache,
	strategy CreationStrategy,
	maxTxs uint32,
	now Clock,
	reg prometheus.Registerer,
) (*Service, error) {
	if now == nil {
		now = time.Now
	}

	pendingGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ordering_pending_txs",
		Help: "Number of transactions admitted but not yet included in a served proposal",
	})
	if err := reg.Register(pendingGauge); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedPendingMetric, err)
	}

	servedCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ordering_served_proposals_total",
		Help: "Number of proposals assembled and served",
	})
	if err := reg.Register(servedCounter); err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedServedMetric, err)
	}

	assemblyLatency, err := metric.NewAverager(
		"ordering_proposal_assembly_duration",
		"time (in ns) spent assembling a served proposal",
		reg,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedLatencyMetrics, err)
	}

	return &Service{
		log:             logger,
		presence:        presenceCache,
		strategy:        strategy,
		maxTxs:          maxTxs,
		now:             now,
		admitted:        make(map[ids.ID]struct{}),
		served:          make(map[round.Round]wire.Proposal),
		pendingGauge:    pendingGauge,
		servedCounter:   servedCounter,
		assemblyLatency: assemblyLatency,
	}, nil
}

// OnBatch admits a transaction batch. A transaction is dropped, not
// admitted, if its hash is already committed or rejected on-chain, or if
// it was already admitted (duplicate suppression).
func (s *Service) OnBatch(batch wire.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admittedAt := s.now()
	for _, tx := range batch.Txs {
		if s.presence.Check(tx.Hash) != presence.Unknown {
			s.log.Debug("dropping tx", "reason", "already final on-chain", "hash", tx.Hash)
			continue
		}
		if _, dup := s.admitted[tx.Hash]; dup {
			s.log.Debug("dropping tx", "reason", "duplicate", "hash", tx.Hash)
			continue
		}
		s.admitted[tx.Hash] = struct{}{}
		tx.AdmitTime = admittedAt
		s.pending = append(s.pending, tx)
	}
	s.pendingGauge.Set(float64(len(s.pending)))
}

// OnRequestProposal answers a proposal request for r. If a proposal is
// already cached for r it is returned. Otherwise, if the creation
// strategy permits and unserved batches exist, up to maxTxs transactions
// are assembled FIFO (ties on admission time broken by ascending hash —
// consensus-critical), cached, and returned. If r has already been
// evicted, ErrStaleRound is returned.
func (s *Service) OnRequestProposal(r round.Round) (wire.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Less(s.evicted) {
		return wire.Proposal{}, ErrStaleRound
	}
	if p, ok := s.served[r]; ok {
		return p, nil
	}
	if !s.strategy.ShouldCreate(r) || len(s.pending) == 0 {
		return wire.Proposal{}, nil
	}

	start := s.now()

	n := len(s.pending)
	if uint32(n) > s.maxTxs {
		n = int(s.maxTxs)
	}
	chosen := make([]wire.Tx, n)
	copy(chosen, s.pending[:n])
	s.pending = s.pending[n:]
	s.pendingGauge.Set(float64(len(s.pending)))

	sort.SliceStable(chosen, func(i, j int) bool {
		if !chosen[i].AdmitTime.Equal(chosen[j].AdmitTime) {
			return chosen[i].AdmitTime.Before(chosen[j].AdmitTime)
		}
		return lessHash(chosen[i].Hash, chosen[j].Hash)
	})

	proposal := wire.Proposal{Txs: chosen, Round: r, CreatedTime: s.now()}
	s.served[r] = proposal
	s.strategy.OnProposal(r)
	s.servedCounter.Inc()
	s.served64.Add(1)
	s.assemblyLatency.Observe(float64(s.now().Sub(start).Nanoseconds()))
	return proposal, nil
}

// OnRoundAdvance evicts cached proposals strictly older than r.
func (s *Service) OnRoundAdvance(r round.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evicted = r
	for cached := range s.served {
		if cached.Less(r) {
			delete(s.served, cached)
		}
	}
}

// PendingCount returns the number of admitted, unserved transactions.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ServedCount returns the number of proposals assembled and served so
// far, mirroring the Prometheus servedCounter for cheap in-process
// reads (tests, diagnostics).
func (s *Service) ServedCount() uint64 {
	return s.served64.Load()
}

func lessHash(a, b ids.ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
