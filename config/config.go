// Package config assembles the in-memory configuration for a node's
// ordering and voting core: no file or flag loader is provided — the
// deployment constructs a Config programmatically through a fluent
// Builder.
package config

import (
	"fmt"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/ordergate/client"
)

// Config holds every externally-supplied knob the core needs.
type Config struct {
	// MaxNumberOfTransactions caps the size of an assembled proposal.
	MaxNumberOfTransactions uint32
	// Delay is the timeout on a proposal request to the round's Issuer.
	Delay time.Duration
	// InitialHashes are the genesis and pre-genesis primers fed to the
	// permutation window at startup, normally the hashes of the last two
	// committed blocks in storage.
	InitialHashes [2]ids.ID
	// GRPCChannelParams is passed opaquely to the client factory.
	GRPCChannelParams client.ChannelParams
	// MailboxSize bounds the gate's RoundSwitches/Proposals output
	// channels.
	MailboxSize int
}

// Builder provides fluent, validating construction of a Config.
// Errors accumulate across calls and surface only at Build, so callers
// can chain without checking after every step.
type Builder struct {
	config *Config
	err    error
}

// NewBuilder returns a Builder seeded with conservative defaults.
func NewBuilder() *Builder {
	return &Builder{
		config: &Config{
			MaxNumberOfTransactions: 1000,
			Delay:                   3 * time.Second,
			MailboxSize:             16,
		},
	}
}

// WithMaxTransactions sets the proposal assembly cap.
func (b *Builder) WithMaxTransactions(n uint32) *Builder {
	if b.err != nil {
		return b
	}
	if n == 0 {
		b.err = fmt.Errorf("config: MaxNumberOfTransactions must be at least 1, got %d", n)
		return b
	}
	b.config.MaxNumberOfTransactions = n
	return b
}

// WithDelay sets the proposal-request timeout.
func (b *Builder) WithDelay(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if d <= 0 {
		b.err = fmt.Errorf("config: Delay must be positive, got %s", d)
		return b
	}
	b.config.Delay = d
	return b
}

// WithInitialHashes sets the two startup permutation-window primers.
func (b *Builder) WithInitialHashes(h0, h1 ids.ID) *Builder {
	if b.err != nil {
		return b
	}
	b.config.InitialHashes = [2]ids.ID{h0, h1}
	return b
}

// WithGRPCChannelParams sets the opaque channel parameters passed to the
// client factory.
func (b *Builder) WithGRPCChannelParams(p client.ChannelParams) *Builder {
	if b.err != nil {
		return b
	}
	b.config.GRPCChannelParams = p
	return b
}

// WithMailboxSize sets the gate's output channel capacity.
func (b *Builder) WithMailboxSize(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n < 1 {
		b.err = fmt.Errorf("config: MailboxSize must be at least 1, got %d", n)
		return b
	}
	b.config.MailboxSize = n
	return b
}

// Build returns the assembled Config, or the first validation error
// encountered — a fatal, init-time ConfigError.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.config, nil
}
