package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/whatsmeow/store/sqlstore"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/authstore"
	"botfleet/pkg/logger"
)

// restartGrace is how long Restart waits after a worker stops before it is
// started again, giving the whatsmeow socket time to fully tear down.
const restartGrace = 3 * time.Second

// quiescence is how long prepareWorker waits after stopping a worker left in
// StatusError before discarding it, so its connection can settle.
const quiescence = 2 * time.Second

// Supervisor serializes lifecycle operations across every bot in the fleet,
// owning one Worker per active bot and consulting a failure ledger before
// any automatic start.
type Supervisor struct {
	botRepo      bot.Repository
	tenantRepo   tenant.Repository
	activityRepo activity.Repository
	ledger       *FailureLedger
	authRoot     *authstore.Root
	store        *sqlstore.Container
	logger       logger.Logger

	mu      sync.Mutex
	locks   map[bot.ID]*sync.Mutex
	workers map[bot.ID]*Worker
}

// NewSupervisor constructs a Supervisor over the given repositories and
// shared whatsmeow device store.
func NewSupervisor(
	botRepo bot.Repository,
	tenantRepo tenant.Repository,
	activityRepo activity.Repository,
	ledger *FailureLedger,
	authRoot *authstore.Root,
	store *sqlstore.Container,
	log logger.Logger,
) *Supervisor {
	return &Supervisor{
		botRepo:      botRepo,
		tenantRepo:   tenantRepo,
		activityRepo: activityRepo,
		ledger:       ledger,
		authRoot:     authRoot,
		store:        store,
		logger:       log,
		locks:        make(map[bot.ID]*sync.Mutex),
		workers:      make(map[bot.ID]*Worker),
	}
}

func (s *Supervisor) lockFor(id bot.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Supervisor) workerFor(id bot.ID, tenantName string) *Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		w = NewWorker(id, tenantName, s.store, s.authRoot, s.logger, s.onWorkerEvent)
		s.workers[id] = w
	}
	return w
}

func (s *Supervisor) forgetWorker(id bot.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workers, id)
}

// prepareWorker returns the worker to start for id. A worker left behind in
// StatusError still owns a half-open client from its last failed connect
// attempt; reusing it as-is would hand that stale client to a fresh Start
// call. Such a worker is stopped, given quiescence to let whatsmeow fully
// tear down its socket, and discarded so a clean worker takes its place. A
// worker that is offline, loading, or online is returned as-is: Worker.Start
// already no-ops on loading/online, and an offline worker's client is
// already nil.
func (s *Supervisor) prepareWorker(ctx context.Context, id bot.ID, tenantName string) (*Worker, error) {
	s.mu.Lock()
	w, exists := s.workers[id]
	s.mu.Unlock()

	if exists && w.Status() == bot.StatusError {
		if err := w.Stop(ctx); err != nil {
			s.logger.WarnWithError("stop unhealthy worker before restart", err, logger.Fields{
				"bot_id": id.String(),
			})
		}
		select {
		case <-time.After(quiescence):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.forgetWorker(id)
	}

	return s.workerFor(id, tenantName), nil
}

// onWorkerEvent persists runtime status changes a worker reports from
// whatsmeow events it receives outside the scope of an explicit operation.
func (s *Supervisor) onWorkerEvent(id bot.ID, status bot.Status, reason DisconnectReason) {
	ctx := context.Background()
	b, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return
	}
	b.SetStatus(status)
	_ = s.botRepo.Update(ctx, b)
	if status == bot.StatusError {
		_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindFailure, fmt.Sprintf("disconnect reason %d", reason)))
	}
}

// Start brings a bot's worker online, honoring approval state and the
// failure ledger. Idempotent if the bot is already starting or online.
func (s *Supervisor) Start(ctx context.Context, id bot.ID) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := b.CanStart(); err != nil {
		return err
	}
	if s.ledger.IsSkipped(id.String()) {
		return bot.NewSkippedError(id)
	}

	w, err := s.prepareWorker(ctx, id, b.Tenant())
	if err != nil {
		return err
	}
	savedJID := readSavedJID(s.authRoot, b.Tenant(), id.String())

	if err := w.Start(ctx, b.Credentials(), savedJID); err != nil {
		_ = s.ledger.RecordFailure(id.String())
		b.SetStatus(bot.StatusError)
		_ = s.botRepo.Update(ctx, b)
		_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindFailure, err.Error()))
		return err
	}

	_ = s.ledger.RecordSuccess(id.String())
	b.SetStatus(bot.StatusOnline)
	_ = s.botRepo.Update(ctx, b)
	_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindStart, ""))
	return nil
}

// Stop gracefully stops a bot's worker without deleting its credentials.
func (s *Supervisor) Stop(ctx context.Context, id bot.ID) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	w := s.workerFor(id, b.Tenant())
	if err := w.Stop(ctx); err != nil {
		return err
	}

	b.SetStatus(bot.StatusOffline)
	_ = s.botRepo.Update(ctx, b)
	_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindStop, ""))
	return nil
}

// Restart stops a bot's worker, waits out the teardown grace period, and
// starts it again.
func (s *Supervisor) Restart(ctx context.Context, id bot.ID) error {
	if err := s.Stop(ctx, id); err != nil {
		return err
	}

	select {
	case <-time.After(restartGrace):
	case <-ctx.Done():
		return ctx.Err()
	}

	lock := s.lockFor(id)
	lock.Lock()
	b, err := s.botRepo.GetByID(ctx, id)
	if err == nil {
		_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindRestart, ""))
	}
	lock.Unlock()

	return s.Start(ctx, id)
}

// Destroy stops a bot's worker, wipes its container directory, clears its
// failure ledger entry, and removes its persisted row. The caller is
// responsible for releasing the bot's registry entry and tenant slot.
func (s *Supervisor) Destroy(ctx context.Context, id bot.ID) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	b, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	w := s.workerFor(id, b.Tenant())
	if err := w.Destroy(ctx); err != nil {
		return err
	}
	s.forgetWorker(id)
	_ = s.ledger.Remove(id.String())

	if err := s.botRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.activityRepo.Append(ctx, activity.New(id.String(), b.Tenant(), activity.KindDestroy, ""))
	return nil
}

// SendMessage relays a message through a bot's live worker.
func (s *Supervisor) SendMessage(ctx context.Context, id bot.ID, to, message string) error {
	lock := s.lockFor(id)
	lock.Lock()
	w, ok := s.workers[id]
	lock.Unlock()

	if !ok {
		return fmt.Errorf("bot %s has no running worker", id.String())
	}
	if err := w.SendMessage(ctx, to, message); err != nil {
		return err
	}

	b, err := s.botRepo.GetByID(ctx, id)
	if err == nil {
		b.RecordSent()
		_ = s.botRepo.Update(ctx, b)
	}
	return nil
}

// UpdateRow persists an in-memory mutation already applied to a bot entity.
func (s *Supervisor) UpdateRow(ctx context.Context, b *bot.Bot) error {
	return s.botRepo.Update(ctx, b)
}

// ResumeTenant starts every approved bot belonging to a tenant that isn't
// already online, skipping bots the failure ledger has marked as skipped.
// Used on process startup to restore a tenant's fleet to its last known
// running state.
func (s *Supervisor) ResumeTenant(ctx context.Context, tenantName string) error {
	const pageSize = 100
	offset := 0
	for {
		bots, total, err := s.botRepo.ListByTenant(ctx, tenantName, pageSize, offset)
		if err != nil {
			return err
		}
		for _, b := range bots {
			if !b.IsApproved() || b.Status() == bot.StatusOnline {
				continue
			}
			if err := s.Start(ctx, b.ID()); err != nil {
				s.logger.WarnWithError("resume start failed", err, logger.Fields{
					"bot_id": b.ID().String(),
					"tenant": tenantName,
				})
			}
		}
		offset += len(bots)
		if offset >= total || len(bots) == 0 {
			break
		}
	}
	return nil
}

// StopAll gracefully stops every worker currently tracked by the
// supervisor, used on process shutdown.
func (s *Supervisor) StopAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]bot.ID, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id bot.ID) {
			defer wg.Done()
			if err := s.Stop(ctx, id); err != nil {
				s.logger.WarnWithError("stop-all failed for bot", err, logger.Fields{"bot_id": id.String()})
			}
		}(id)
	}
	wg.Wait()
}
