// Package pairing implements the guest pairing service: a throwaway
// whatsmeow device, live only for the duration of a single phone-code
// pairing attempt, never persisted past the request.
package pairing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/whatsmeow/store/sqlstore"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/pairing"
	"botfleet/internal/domain/whatsapp"
	"botfleet/internal/infra/whats"
	"botfleet/pkg/logger"
)

const (
	// hardDeadline bounds the entire pairing attempt: if WhatsApp hasn't
	// confirmed pairing by then, the attempt is abandoned.
	hardDeadline = 60 * time.Second
	// teardownGrace is how long disconnect/close is given to finish before
	// the service stops waiting on it.
	teardownGrace = 5 * time.Second
)

// Service runs ephemeral, request-scoped pairing attempts against the
// shared whatsmeow device store. Every attempt gets its own throwaway
// device id; nothing here is tied to a durable bot row.
type Service struct {
	store *sqlstore.Container
	repo  pairing.Repository
	log   logger.Logger
}

// NewService constructs a guest pairing service over the shared whatsmeow
// device store.
func NewService(store *sqlstore.Container, repo pairing.Repository, log logger.Logger) *Service {
	return &Service{store: store, repo: repo, log: log}
}

// attempt tracks the live client for one in-flight pairing session so a
// caller can be notified of its outcome and the client can be torn down.
type attempt struct {
	mu     sync.Mutex
	done   chan struct{}
	result pairing.Outcome
}

func (a *attempt) finish(o pairing.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.done:
		return
	default:
		a.result = o
		close(a.done)
	}
}

// GeneratePairingCode allocates a throwaway device, requests a pairing
// code for phone, and returns it immediately. The underlying client keeps
// running in the background until it either confirms pairing, fails, or
// hits the hard deadline, at which point the session outcome recorded in
// the repository is updated and the client is torn down.
func (s *Service) GeneratePairingCode(ctx context.Context, requestID, phone string) (*pairing.Session, error) {
	validated, err := bot.NewPhone(phone)
	if err != nil {
		return nil, fmt.Errorf("invalid phone number: %w", err)
	}

	session := pairing.New(requestID, validated.String())
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to record pairing session: %w", err)
	}

	deviceID := bot.NewID()
	client, err := whats.NewClient(deviceID, s.store, "", "", &logger.NoopLogger{})
	if err != nil {
		session.Outcome = pairing.OutcomeBadSession
		_ = s.repo.Save(ctx, session)
		return nil, fmt.Errorf("failed to allocate pairing device: %w", err)
	}

	at := &attempt{done: make(chan struct{})}
	client.SetEventHandler(&pairHandler{requestID: requestID, at: at})

	connectCtx, cancel := context.WithTimeout(context.Background(), hardDeadline)
	if _, err := client.Connect(connectCtx); err != nil {
		cancel()
		_ = client.Close()
		session.Outcome = pairing.OutcomeClosedRetriable
		_ = s.repo.Save(ctx, session)
		return nil, fmt.Errorf("failed to connect pairing device: %w", err)
	}

	code, err := client.PairPhone(connectCtx, validated.String())
	if err != nil {
		cancel()
		s.teardown(client)
		session.Outcome = pairing.OutcomeClosedRetriable
		_ = s.repo.Save(ctx, session)
		return nil, fmt.Errorf("failed to request pairing code: %w", err)
	}

	session.Code = code
	if err := s.repo.Save(ctx, session); err != nil {
		cancel()
		s.teardown(client)
		return nil, fmt.Errorf("failed to record pairing code: %w", err)
	}

	go s.awaitOutcome(connectCtx, cancel, requestID, client, at)

	return session, nil
}

// awaitOutcome blocks until the pairing attempt concludes or the hard
// deadline elapses, records the final outcome, and tears the client down.
func (s *Service) awaitOutcome(ctx context.Context, cancel context.CancelFunc, requestID string, client whatsapp.Client, at *attempt) {
	defer cancel()

	outcome := pairing.OutcomeTimedOut
	select {
	case <-at.done:
		outcome = at.result
	case <-ctx.Done():
	}

	s.teardown(client)

	session, err := s.repo.Get(context.Background(), requestID)
	if err != nil {
		s.log.WarnWithError("pairing session vanished before outcome could be recorded", err, logger.Fields{"request_id": requestID})
		return
	}
	session.Outcome = outcome
	if err := s.repo.Save(context.Background(), session); err != nil {
		s.log.WarnWithError("failed to record pairing outcome", err, logger.Fields{"request_id": requestID})
	}
}

// teardown disconnects and closes a pairing client, giving it at most
// teardownGrace to settle.
func (s *Service) teardown(client whatsapp.Client) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), teardownGrace)
		defer cancel()
		_ = client.Disconnect(ctx)
		_ = client.Close()
	}()
	select {
	case <-done:
	case <-time.After(teardownGrace):
	}
}

// GetSession returns the current state of a pairing attempt.
func (s *Service) GetSession(ctx context.Context, requestID string) (*pairing.Session, error) {
	return s.repo.Get(ctx, requestID)
}

// pairHandler translates whatsmeow client events into a pairing outcome
// for a single ephemeral attempt.
type pairHandler struct {
	requestID string
	at        *attempt
}

func (h *pairHandler) OnConnected(sessionID bot.ID, jid string)      {}
func (h *pairHandler) OnDisconnected(sessionID bot.ID, reason string) {}
func (h *pairHandler) OnQRCode(sessionID bot.ID, qrCode string)      {}

func (h *pairHandler) OnAuthenticated(sessionID bot.ID, jid string) {
	h.at.finish(pairing.OutcomeSucceeded)
}

func (h *pairHandler) OnAuthenticationFailed(sessionID bot.ID, reason string) {
	h.at.finish(pairing.OutcomeAuthFailed)
}

func (h *pairHandler) OnMessage(sessionID bot.ID, message *whatsapp.Message) {}

func (h *pairHandler) OnError(sessionID bot.ID, err error) {
	h.at.finish(pairing.OutcomeClosedRetriable)
}

var _ whatsapp.EventHandler = (*pairHandler)(nil)
