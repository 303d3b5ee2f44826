// Package round implements the round-identifier algebra: pure functions
// over the (block_round, reject_round) pair that positions a node in the
// consensus timeline.
package round

import "fmt"

// Consumer offsets encode which future round a transaction forwarded
// "now" is being pre-assembled for.
const (
	NextCommitConsumer = 0
	NextRejectConsumer = 1
)

// Round is a position in the consensus timeline: BlockRound advances when
// a block commits, RejectRound advances when consensus rejects or
// produces nothing for the current block round.
type Round struct {
	BlockRound  uint64
	RejectRound uint32
}

// New returns the round (blockRound, rejectRound).
func New(blockRound uint64, rejectRound uint32) Round {
	return Round{BlockRound: blockRound, RejectRound: rejectRound}
}

// Genesis returns the initial round (genesisHeight, 0).
func Genesis(genesisHeight uint64) Round {
	return Round{BlockRound: genesisHeight, RejectRound: 0}
}

// NextCommit returns the round following a commit of r: the block round
// advances and the reject round resets to zero.
func NextCommit(r Round) Round {
	return Round{BlockRound: r.BlockRound + 1, RejectRound: 0}
}

// NextReject returns the round following a reject (or "nothing") outcome
// for r: the block round is unchanged and the reject round advances.
func NextReject(r Round) Round {
	return Round{BlockRound: r.BlockRound, RejectRound: r.RejectRound + 1}
}

// CurrentRejectConsumer returns the reject-round offset of the peer
// pre-seeded to consume transactions for the reject-reject continuation
// of the current round.
func CurrentRejectConsumer(rejectRound uint32) uint32 {
	return rejectRound + 1
}

// Less reports whether r is strictly less than other in the lexicographic
// order on (BlockRound, RejectRound).
func (r Round) Less(other Round) bool {
	if r.BlockRound != other.BlockRound {
		return r.BlockRound < other.BlockRound
	}
	return r.RejectRound < other.RejectRound
}

// Equal reports whether r and other identify the same round.
func (r Round) Equal(other Round) bool {
	return r == other
}

// String implements fmt.Stringer.
func (r Round) String() string {
	return fmt.Sprintf("(%d,%d)", r.BlockRound, r.RejectRound)
}
