package fleet

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/bot"
	"botfleet/internal/infra/authstore"
	"botfleet/pkg/logger"
)

func newBareSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	return &Supervisor{
		authRoot: authstore.NewRoot(t.TempDir()),
		logger:   &logger.NoopLogger{},
		locks:    make(map[bot.ID]*sync.Mutex),
		workers:  make(map[bot.ID]*Worker),
	}
}

// A worker left in StatusError still owns a half-open client from its last
// failed connect attempt. prepareWorker must stop it and hand back a fresh
// replacement rather than let Start reuse the stale one.
func TestSupervisor_PrepareWorkerDiscardsErroredWorker(t *testing.T) {
	s := newBareSupervisor(t)
	id := bot.NewID()

	stale := NewWorker(id, "acme", nil, s.authRoot, s.logger, nil)
	stale.OnAuthenticationFailed(id, "device removed")
	require.Equal(t, bot.StatusError, stale.Status())
	s.workers[id] = stale

	fresh, err := s.prepareWorker(context.Background(), id, "acme")
	require.NoError(t, err)

	assert.NotSame(t, stale, fresh)
	assert.Equal(t, bot.StatusOffline, fresh.Status())

	s.mu.Lock()
	tracked := s.workers[id]
	s.mu.Unlock()
	assert.Same(t, fresh, tracked)
}

// An online worker is already healthy and must be reused unchanged:
// Worker.Start already no-ops on a loading or online worker.
func TestSupervisor_PrepareWorkerReusesOnlineWorker(t *testing.T) {
	s := newBareSupervisor(t)
	id := bot.NewID()

	online := NewWorker(id, "acme", nil, s.authRoot, s.logger, nil)
	online.OnConnected(id, "5511999990000:1@s.whatsapp.net")
	s.workers[id] = online

	w, err := s.prepareWorker(context.Background(), id, "acme")
	require.NoError(t, err)
	assert.Same(t, online, w)
}

// A worker the supervisor has never tracked is created fresh, offline.
func TestSupervisor_PrepareWorkerCreatesMissingWorker(t *testing.T) {
	s := newBareSupervisor(t)
	id := bot.NewID()

	w, err := s.prepareWorker(context.Background(), id, "acme")
	require.NoError(t, err)
	assert.Equal(t, bot.StatusOffline, w.Status())
}

// prepareWorker must respect context cancellation during its quiescence
// wait instead of blocking the caller for the full interval.
func TestSupervisor_PrepareWorkerHonorsContextCancellation(t *testing.T) {
	s := newBareSupervisor(t)
	id := bot.NewID()

	stale := NewWorker(id, "acme", nil, s.authRoot, s.logger, nil)
	stale.OnAuthenticationFailed(id, "device removed")
	s.workers[id] = stale

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.prepareWorker(ctx, id, "acme")
	assert.ErrorIs(t, err, context.Canceled)
}
