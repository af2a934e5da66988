// Package pairing wraps the guest pairing service behind a thin
// usecase-layer entry point for HTTP handlers.
package pairing

import (
	"context"

	"botfleet/internal/domain/pairing"
)

// Generator is the subset of the infra pairing service the usecase needs.
type Generator interface {
	GeneratePairingCode(ctx context.Context, requestID, phone string) (*pairing.Session, error)
	GetSession(ctx context.Context, requestID string) (*pairing.Session, error)
}

// UseCase exposes guest pairing operations to the HTTP layer.
type UseCase struct {
	svc Generator
}

// New constructs the pairing usecase over the given service.
func New(svc Generator) *UseCase {
	return &UseCase{svc: svc}
}

// GeneratePairingCode starts a new ephemeral pairing attempt for phone and
// returns its initial session state, including the pairing code to relay
// to the guest.
func (u *UseCase) GeneratePairingCode(ctx context.Context, requestID, phone string) (*pairing.Session, error) {
	return u.svc.GeneratePairingCode(ctx, requestID, phone)
}

// GetGuestSession reports the current outcome of a previously started
// pairing attempt, so a guest client can poll for completion.
func (u *UseCase) GetGuestSession(ctx context.Context, requestID string) (*pairing.Session, error) {
	return u.svc.GetSession(ctx, requestID)
}
