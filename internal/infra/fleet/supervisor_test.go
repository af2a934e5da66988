package fleet_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/authstore"
	"botfleet/internal/infra/fleet"
	"botfleet/pkg/logger"
)

// fakeBotRepo is an in-memory bot.Repository sufficient to drive the
// supervisor's pre-flight checks without a real database.
type fakeBotRepo struct {
	mu   sync.Mutex
	bots map[bot.ID]*bot.Bot
}

func newFakeBotRepo(bots ...*bot.Bot) *fakeBotRepo {
	r := &fakeBotRepo{bots: make(map[bot.ID]*bot.Bot)}
	for _, b := range bots {
		r.bots[b.ID()] = b
	}
	return r
}

func (r *fakeBotRepo) Create(ctx context.Context, b *bot.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bots[b.ID()] = b
	return nil
}

func (r *fakeBotRepo) GetByID(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bots[id]
	if !ok {
		return nil, bot.ErrBotNotFound
	}
	return b, nil
}

func (r *fakeBotRepo) GetByPhone(ctx context.Context, phone bot.Phone) (*bot.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bots {
		if b.Phone() == phone {
			return b, nil
		}
	}
	return nil, bot.ErrBotNotFound
}

func (r *fakeBotRepo) ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*bot.Bot, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bot.Bot
	for _, b := range r.bots {
		if b.Tenant() == tenantName {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (r *fakeBotRepo) ListByApprovalStatus(ctx context.Context, status bot.ApprovalStatus, limit, offset int) ([]*bot.Bot, int, error) {
	return nil, 0, nil
}

func (r *fakeBotRepo) Update(ctx context.Context, b *bot.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bots[b.ID()] = b
	return nil
}

func (r *fakeBotRepo) Delete(ctx context.Context, id bot.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bots, id)
	return nil
}

func (r *fakeBotRepo) CountByTenant(ctx context.Context, tenantName string) (int, error) {
	return 0, nil
}

func (r *fakeBotRepo) Exists(ctx context.Context, id bot.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bots[id]
	return ok, nil
}

// fakeActivityRepo discards every record; the supervisor's activity calls
// are all best-effort and ignore their errors.
type fakeActivityRepo struct{}

func (fakeActivityRepo) Append(ctx context.Context, a *activity.Activity) error { return nil }
func (fakeActivityRepo) ListByBot(ctx context.Context, botID string, limit, offset int) ([]*activity.Activity, error) {
	return nil, nil
}
func (fakeActivityRepo) ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*activity.Activity, error) {
	return nil, nil
}

// fakeTenantRepo is unused by the operations under test but required to
// satisfy NewSupervisor's constructor.
type fakeTenantRepo struct{}

func (fakeTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error            { return nil }
func (fakeTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}
func (fakeTenantRepo) List(ctx context.Context) ([]*tenant.Tenant, error) { return nil, nil }
func (fakeTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error { return nil }
func (fakeTenantRepo) Exists(ctx context.Context, name string) (bool, error) { return false, nil }

func newTestSupervisor(t *testing.T, bots ...*bot.Bot) (*fleet.Supervisor, *fakeBotRepo) {
	t.Helper()
	botRepo := newFakeBotRepo(bots...)
	ledger, err := fleet.NewFailureLedger(filepath.Join(t.TempDir(), "ledger.json"))
	require.NoError(t, err)
	root := authstore.NewRoot(t.TempDir())
	sup := fleet.NewSupervisor(botRepo, fakeTenantRepo{}, fakeActivityRepo{}, ledger, root, nil, &logger.NoopLogger{})
	return sup, botRepo
}

func newPendingBot(t *testing.T) *bot.Bot {
	t.Helper()
	phone, err := bot.NewPhone("+5511999990000")
	require.NoError(t, err)
	return bot.NewBot("acme-bot", phone, []byte("creds"), "acme", false, bot.Features{})
}

func TestSupervisor_StartRejectsUnapprovedBot(t *testing.T) {
	b := newPendingBot(t)
	sup, _ := newTestSupervisor(t, b)

	err := sup.Start(context.Background(), b.ID())
	assert.ErrorIs(t, err, bot.ErrNotApproved)
}

func TestSupervisor_StartRejectsUnknownBot(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	err := sup.Start(context.Background(), bot.NewID())
	assert.Error(t, err)
}

func TestSupervisor_StartHonorsFailureLedgerSkip(t *testing.T) {
	b := newPendingBot(t)
	require.NoError(t, b.Approve(3))

	ledgerPath := filepath.Join(t.TempDir(), "ledger.json")
	ledger, err := fleet.NewFailureLedger(ledgerPath)
	require.NoError(t, err)
	require.NoError(t, ledger.RecordFailure(b.ID().String()))
	require.NoError(t, ledger.RecordFailure(b.ID().String()))

	botRepo := newFakeBotRepo(b)
	sup := fleet.NewSupervisor(botRepo, fakeTenantRepo{}, fakeActivityRepo{}, ledger, authstore.NewRoot(t.TempDir()), nil, &logger.NoopLogger{})

	err = sup.Start(context.Background(), b.ID())
	var botErr *bot.Error
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, bot.ErrCodeSkipped, botErr.Code)
}

func TestSupervisor_StopUnknownBotErrors(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	err := sup.Stop(context.Background(), bot.NewID())
	assert.Error(t, err)
}

func TestSupervisor_DestroyRemovesWorkerAndRow(t *testing.T) {
	b := newPendingBot(t)
	sup, botRepo := newTestSupervisor(t, b)

	require.NoError(t, sup.Destroy(context.Background(), b.ID()))

	_, err := botRepo.GetByID(context.Background(), b.ID())
	assert.ErrorIs(t, err, bot.ErrBotNotFound)
}

func TestSupervisor_ResumeTenantSkipsUnapprovedAndOnlineBots(t *testing.T) {
	pending := newPendingBot(t)

	onlinePhone, err := bot.NewPhone("+5511999990001")
	require.NoError(t, err)
	online := bot.NewBot("acme-bot-2", onlinePhone, []byte("creds"), "acme", false, bot.Features{})
	require.NoError(t, online.Approve(3))
	online.SetStatus(bot.StatusOnline)

	sup, _ := newTestSupervisor(t, pending, online)

	// Neither bot is eligible for an actual Start call: pending isn't
	// approved, online is already online. ResumeTenant should return
	// cleanly without attempting to spin up a worker for either.
	require.NoError(t, sup.ResumeTenant(context.Background(), "acme"))
}

func TestSupervisor_StopAllWithNoWorkersReturnsImmediately(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	done := make(chan struct{})
	go func() {
		sup.StopAll(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll did not return with no tracked workers")
	}
}

func TestSupervisor_UpdateRowPersists(t *testing.T) {
	b := newPendingBot(t)
	sup, botRepo := newTestSupervisor(t, b)

	b.SetStatus(bot.StatusError)
	require.NoError(t, sup.UpdateRow(context.Background(), b))

	reloaded, err := botRepo.GetByID(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, bot.StatusError, reloaded.Status())
}
