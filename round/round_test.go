package round

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextCommitAdvancesBlockRound(t *testing.T) {
	r := New(10, 3)
	next := NextCommit(r)
	require.Equal(t, New(11, 0), next)
}

func TestNextRejectAdvancesRejectRound(t *testing.T) {
	r := New(10, 3)
	next := NextReject(r)
	require.Equal(t, New(10, 4), next)
}

func TestNextCommitAndNextRejectAgreeOnNoInput(t *testing.T) {
	for block := uint64(0); block < 50; block++ {
		for reject := uint32(0); reject < 50; reject++ {
			r := New(block, reject)
			require.NotEqual(t, NextCommit(r), NextReject(r))
		}
	}
}

func TestCurrentRejectConsumer(t *testing.T) {
	require.Equal(t, uint32(1), CurrentRejectConsumer(0))
	require.Equal(t, uint32(5), CurrentRejectConsumer(4))
}

func TestLessIsLexicographic(t *testing.T) {
	require.True(t, New(1, 5).Less(New(2, 0)))
	require.True(t, New(2, 0).Less(New(2, 1)))
	require.False(t, New(2, 1).Less(New(2, 1)))
	require.False(t, New(2, 2).Less(New(2, 1)))
}

func TestRoundMonotonicityOverTrace(t *testing.T) {
	// Simulates a local trace of SynchronizationEvents and checks the
	// resulting sequence of rounds is strictly increasing.
	outcomes := []string{"commit", "reject", "nothing", "commit", "reject", "commit"}
	r := Genesis(0)
	seen := []Round{r}
	for _, o := range outcomes {
		switch o {
		case "commit":
			r = NextCommit(r)
		default:
			r = NextReject(r)
		}
		seen = append(seen, r)
	}
	for i := 1; i < len(seen); i++ {
		require.True(t, seen[i-1].Less(seen[i]), "round %d (%s) must precede round %d (%s)", i-1, seen[i-1], i, seen[i])
	}
}

func TestGenesisRound(t *testing.T) {
	require.Equal(t, New(42, 0), Genesis(42))
}

func TestString(t *testing.T) {
	require.Equal(t, "(10,3)", New(10, 3).String())
}
