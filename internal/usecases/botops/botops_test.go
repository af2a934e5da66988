package botops_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/usecases/botops"
)

type fakeSupervisor struct {
	startErr, stopErr, restartErr, destroyErr, sendErr, resumeErr error
	lastStarted                                                  bot.ID
	lastResumedTenant                                             string
}

func (f *fakeSupervisor) Start(ctx context.Context, id bot.ID) error {
	f.lastStarted = id
	return f.startErr
}
func (f *fakeSupervisor) Stop(ctx context.Context, id bot.ID) error    { return f.stopErr }
func (f *fakeSupervisor) Restart(ctx context.Context, id bot.ID) error { return f.restartErr }
func (f *fakeSupervisor) Destroy(ctx context.Context, id bot.ID) error { return f.destroyErr }
func (f *fakeSupervisor) SendMessage(ctx context.Context, id bot.ID, to, message string) error {
	return f.sendErr
}
func (f *fakeSupervisor) ResumeTenant(ctx context.Context, tenantName string) error {
	f.lastResumedTenant = tenantName
	return f.resumeErr
}

type fakeBotRepo struct {
	bots map[bot.ID]*bot.Bot
}

func (r *fakeBotRepo) Create(ctx context.Context, b *bot.Bot) error { return nil }
func (r *fakeBotRepo) GetByID(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	b, ok := r.bots[id]
	if !ok {
		return nil, bot.ErrBotNotFound
	}
	return b, nil
}
func (r *fakeBotRepo) GetByPhone(ctx context.Context, phone bot.Phone) (*bot.Bot, error) {
	return nil, bot.ErrBotNotFound
}
func (r *fakeBotRepo) ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*bot.Bot, int, error) {
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
func (r *fakeBotRepo) Update(ctx context.Context, b *bot.Bot) error { return nil }
func (r *fakeBotRepo) Delete(ctx context.Context, id bot.ID) error  { return nil }
func (r *fakeBotRepo) CountByTenant(ctx context.Context, tenantName string) (int, error) {
	return 0, nil
}
func (r *fakeBotRepo) Exists(ctx context.Context, id bot.ID) (bool, error) { return false, nil }

type fakeTenantRepo struct {
	tenants []*tenant.Tenant
}

func (r *fakeTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }
func (r *fakeTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}
func (r *fakeTenantRepo) List(ctx context.Context) ([]*tenant.Tenant, error) { return r.tenants, nil }
func (r *fakeTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error { return nil }
func (r *fakeTenantRepo) Exists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func TestUseCase_StartDelegatesToSupervisor(t *testing.T) {
	sup := &fakeSupervisor{}
	uc := botops.New(sup, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{})

	id := bot.NewID()
	require.NoError(t, uc.Start(context.Background(), id))
	assert.True(t, id.Equals(sup.lastStarted))
}

func TestUseCase_StartPropagatesSupervisorError(t *testing.T) {
	sup := &fakeSupervisor{startErr: errors.New("boom")}
	uc := botops.New(sup, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{})

	err := uc.Start(context.Background(), bot.NewID())
	assert.EqualError(t, err, "boom")
}

func TestUseCase_ResumeTenantDelegates(t *testing.T) {
	sup := &fakeSupervisor{}
	uc := botops.New(sup, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{})

	require.NoError(t, uc.ResumeTenant(context.Background(), "acme"))
	assert.Equal(t, "acme", sup.lastResumedTenant)
}

func TestUseCase_ListTenants(t *testing.T) {
	tn, err := tenant.New("acme", 10)
	require.NoError(t, err)
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{tenants: []*tenant.Tenant{tn}})

	tenants, err := uc.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "ACME", tenants[0].Name())
}

func TestUseCase_GetBotNotFound(t *testing.T) {
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{})
	_, err := uc.GetBot(context.Background(), bot.NewID())
	assert.ErrorIs(t, err, bot.ErrBotNotFound)
}
