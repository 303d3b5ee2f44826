package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ordergate/config"
)

func TestBuilderDefaults(t *testing.T) {
	cfg, err := config.NewBuilder().Build()
	require.NoError(t, err)
	require.Equal(t, uint32(1000), cfg.MaxNumberOfTransactions)
	require.Equal(t, 3*time.Second, cfg.Delay)
}

func TestBuilderRejectsZeroMaxTransactions(t *testing.T) {
	_, err := config.NewBuilder().WithMaxTransactions(0).Build()
	require.Error(t, err)
}

func TestBuilderRejectsNonPositiveDelay(t *testing.T) {
	_, err := config.NewBuilder().WithDelay(0).Build()
	require.Error(t, err)
}

func TestBuilderErrorShortCircuitsLaterCalls(t *testing.T) {
	_, err := config.NewBuilder().
		WithMaxTransactions(0).
		WithDelay(time.Second).
		Build()
	require.Error(t, err)
}

func TestBuilderChaining(t *testing.T) {
	cfg, err := config.NewBuilder().
		WithMaxTransactions(50).
		WithDelay(time.Second).
		WithMailboxSize(8).
		Build()
	require.NoError(t, err)
	require.Equal(t, uint32(50), cfg.MaxNumberOfTransactions)
	require.Equal(t, time.Second, cfg.Delay)
	require.Equal(t, 8, cfg.MailboxSize)
}
