package repository

import (
	"context"
	"sync"

	"botfleet/internal/domain/pairing"
)

// InMemoryPairingRepository is a trivial process-local store for ephemeral
// guest pairing sessions. It never touches durable storage: a restart loses
// every in-flight pairing attempt, which is acceptable since a guest simply
// re-scans.
type InMemoryPairingRepository struct {
	mu       sync.Mutex
	sessions map[string]*pairing.Session
}

// NewInMemoryPairingRepository creates an empty in-process pairing session store.
func NewInMemoryPairingRepository() pairing.Repository {
	return &InMemoryPairingRepository{
		sessions: make(map[string]*pairing.Session),
	}
}

func (r *InMemoryPairingRepository) Save(ctx context.Context, s *pairing.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.RequestID] = s
	return nil
}

func (r *InMemoryPairingRepository) Get(ctx context.Context, requestID string) (*pairing.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[requestID]
	if !ok {
		return nil, pairing.ErrSessionNotFound
	}
	return s, nil
}

func (r *InMemoryPairingRepository) Delete(ctx context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, requestID)
	return nil
}
