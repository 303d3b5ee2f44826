// Package presence defines the TxPresenceCache boundary: an external
// collaborator that reports whether a transaction hash is already final
// on-chain. Stateful transaction validation and persistent storage are
// owned by that collaborator, not this core; only the interface lives
// here.
package presence

import "github.com/luxfi/ids"

// Status is the on-chain presence of a transaction hash.
type Status int

const (
	Unknown Status = iota
	Committed
	Rejected
)

// Cache reports the on-chain presence of transaction hashes.
type Cache interface {
	Check(hash ids.ID) Status
}
