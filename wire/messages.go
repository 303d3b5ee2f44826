// Package wire defines the shapes of the messages exchanged by the
// ordering and voting transports. The serialization dialect is left to
// the deployment; these are plain Go structs, encoded by whatever Codec
// the deployment registers (see codec.go) rather than generated
// protobuf types.
package wire

import (
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/ordergate/round"
)

// Vote is a single signed vote over a proposal hash for a round.
type Vote struct {
	Hash      ids.ID
	PublicKey []byte
	Signature []byte
	Round     round.Round
}

// State is a bundle of votes sent between consensus nodes. A bundle is
// valid only if all votes share the same round (see ValidateBundle).
type State struct {
	Votes []Vote
}

// Tx is an opaque transaction as admitted by the ordering service.
type Tx struct {
	Hash      ids.ID
	Payload   []byte
	AdmitTime time.Time
}

// Batch is a group of transactions pushed to the ordering service by a
// peer.
type Batch struct {
	Txs []Tx
}

// BatchPush is the ordering-service ingress message from peers.
type BatchPush struct {
	Batches []Batch
}

// ProposalRequest asks a peer's ordering service for the proposal it has
// assembled (or will assemble) for Round.
type ProposalRequest struct {
	Round round.Round
}

// Proposal is an ordered sequence of transactions for Round, capped by
// the deployment's max_number_of_transactions.
type Proposal struct {
	Txs         []Tx
	Round       round.Round
	CreatedTime time.Time
}

// Empty reports whether the proposal carries no transactions — the shape
// returned for a timed-out or stale request.
func (p Proposal) Empty() bool {
	return len(p.Txs) == 0
}

// CommittedBlock carries the information the gate needs once a round
// commits: the block's own hash (fed back into the permutation window)
// and the transaction hashes that are now final, either because they
// were included (Transactions) or explicitly rejected
// (RejectedTransactionHashes).
type CommittedBlock struct {
	Hash                      ids.ID
	Transactions              []Tx
	RejectedTransactionHashes []ids.ID
}

// ValidateBundle reports whether votes form a valid State bundle: it
// must be non-empty and every vote must share the same round.
func ValidateBundle(votes []Vote) bool {
	if len(votes) == 0 {
		return false
	}
	first := votes[0].Round
	for _, v := range votes[1:] {
		if v.Round != first {
			return false
		}
	}
	return true
}
