package fleet_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/infra/fleet"
)

func TestFailureLedger_RecordFailureTripsSkipAfterThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := fleet.NewFailureLedger(path)
	require.NoError(t, err)

	assert.False(t, l.IsSkipped("bot1"))

	require.NoError(t, l.RecordFailure("bot1"))
	assert.False(t, l.IsSkipped("bot1"), "single failure should not skip yet")

	require.NoError(t, l.RecordFailure("bot1"))
	assert.True(t, l.IsSkipped("bot1"), "two consecutive failures should trip the skip threshold")
}

func TestFailureLedger_RecordSuccessClearsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := fleet.NewFailureLedger(path)
	require.NoError(t, err)

	require.NoError(t, l.RecordFailure("bot1"))
	require.NoError(t, l.RecordFailure("bot1"))
	require.True(t, l.IsSkipped("bot1"))

	require.NoError(t, l.RecordSuccess("bot1"))
	assert.False(t, l.IsSkipped("bot1"))
}

func TestFailureLedger_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := fleet.NewFailureLedger(path)
	require.NoError(t, err)
	require.NoError(t, l.RecordFailure("bot1"))
	require.NoError(t, l.RecordFailure("bot1"))

	reloaded, err := fleet.NewFailureLedger(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSkipped("bot1"))
}

func TestFailureLedger_RemoveIsSafeOnUnknownBot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := fleet.NewFailureLedger(path)
	require.NoError(t, err)

	assert.NoError(t, l.Remove("never-seen"))
}
