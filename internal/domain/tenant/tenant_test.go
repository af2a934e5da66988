package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/tenant"
)

func TestNew(t *testing.T) {
	t.Run("normalizes the name to uppercase", func(t *testing.T) {
		tn, err := tenant.New("  acme  ", 10)
		require.NoError(t, err)
		assert.Equal(t, "ACME", tn.Name())
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := tenant.New("   ", 10)
		assert.ErrorIs(t, err, tenant.ErrInvalidName)
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		_, err := tenant.New("acme", -1)
		assert.ErrorIs(t, err, tenant.ErrInvalidCapacity)
	})

	t.Run("starts active with zero occupancy", func(t *testing.T) {
		tn, err := tenant.New("acme", 10)
		require.NoError(t, err)
		assert.True(t, tn.IsActive())
		assert.Equal(t, 0, tn.CurrentCount())
		assert.True(t, tn.HasCapacity())
	})
}

func TestTenant_IncrementDecrement(t *testing.T) {
	tn, err := tenant.New("acme", 2)
	require.NoError(t, err)

	require.NoError(t, tn.Increment())
	require.NoError(t, tn.Increment())
	assert.False(t, tn.HasCapacity())

	assert.ErrorIs(t, tn.Increment(), tenant.ErrAtCapacity)

	tn.Decrement()
	assert.True(t, tn.HasCapacity())
	assert.Equal(t, 1, tn.CurrentCount())
}

func TestTenant_DecrementNeverGoesNegative(t *testing.T) {
	tn, err := tenant.New("acme", 2)
	require.NoError(t, err)

	tn.Decrement()
	assert.Equal(t, 0, tn.CurrentCount())
}

func TestTenant_SuspendResume(t *testing.T) {
	tn, err := tenant.New("acme", 2)
	require.NoError(t, err)

	tn.Suspend()
	assert.False(t, tn.IsActive())

	tn.Resume()
	assert.True(t, tn.IsActive())
}

func TestTenant_Validate(t *testing.T) {
	t.Run("flags a count above capacity", func(t *testing.T) {
		tn := tenant.Restore("ACME", 2, 3, tenant.StatusActive, time.Now(), time.Now())
		assert.ErrorIs(t, tn.Validate(), tenant.ErrCountExceedsCapacity)
	})

	t.Run("accepts a consistent tenant", func(t *testing.T) {
		tn := tenant.Restore("ACME", 2, 2, tenant.StatusActive, time.Now(), time.Now())
		assert.NoError(t, tn.Validate())
	})
}
