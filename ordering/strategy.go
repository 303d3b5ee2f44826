package ordering

import "github.com/luxfi/ordergate/round"

// CreationStrategy decides whether this node should actually build a
// proposal for a given round, reducing proposal storms when many peers
// are simultaneously eligible issuers for overlapping rounds.
type CreationStrategy interface {
	ShouldCreate(r round.Round) bool
	OnProposal(r round.Round)
}

// AlwaysCreate never gates proposal creation; useful for tests and for
// single-issuer deployments where proposal-storm reduction is moot.
type AlwaysCreate struct{}

func (AlwaysCreate) ShouldCreate(round.Round) bool { return true }
func (AlwaysCreate) OnProposal(round.Round)        {}
