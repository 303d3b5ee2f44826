// Command ordergated wires the ordering and voting core together. It
// does not open a network listener or implement any business logic
// beyond construction: a real deployment embeds these packages behind
// its own gRPC server and synchronizer, supplying real peers, a real
// TxPresenceCache, and real initial hashes from storage.
package main

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ids"

	"github.com/luxfi/ordergate/client"
	"github.com/luxfi/ordergate/config"
	"github.com/luxfi/ordergate/connection"
	"github.com/luxfi/ordergate/gate"
	ordergatelog "github.com/luxfi/ordergate/log"
	"github.com/luxfi/ordergate/ordering"
	"github.com/luxfi/ordergate/presence/presencetest"
	"github.com/luxfi/ordergate/yac"
)

func main() {
	logger := ordergatelog.NewNoOpLogger()

	cfg, err := config.NewBuilder().
		WithMaxTransactions(1000).
		WithDelay(3 * time.Second).
		WithInitialHashes(ids.Empty, ids.Empty).
		Build()
	if err != nil {
		logger.Error("config: fatal at init", "error", err)
		os.Exit(1)
	}

	// Presence and the client factory are external collaborators; this
	// binary wires placeholder implementations since it embeds no
	// storage or transport of its own (see DESIGN.md).
	presenceCache := presencetest.New()
	factory := client.NewGRPCFactory(cfg.GRPCChannelParams)

	reg := prometheus.NewRegistry()
	orderingService, err := ordering.New(logger, presenceCache, ordering.AlwaysCreate{}, cfg.MaxNumberOfTransactions, time.Now, reg)
	if err != nil {
		logger.Error("ordering: fatal at init", "error", err)
		os.Exit(1)
	}

	connMgr := connection.New(logger, cfg.InitialHashes)
	g, err := gate.New(logger, connMgr, factory, presenceCache, orderingService, cfg.Delay, cfg.MailboxSize, reg)
	if err != nil {
		logger.Error("gate: fatal at init", "error", err)
		os.Exit(1)
	}
	votingTransport := yac.New(logger, factory)

	logger.Info("ordergate core constructed",
		"maxNumberOfTransactions", cfg.MaxNumberOfTransactions,
		"delay", cfg.Delay,
	)

	// A real deployment drives g.OnSynchronizationEvent / OnCommittedBlock
	// from its synchronizer, forwards g.Proposals() downstream, and wires
	// votingTransport.Subscribe to its consensus state machine. This
	// binary stops at construction.
	_, _ = g, votingTransport
}
