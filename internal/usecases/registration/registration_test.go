package registration_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/credential"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/database/migrations"
	"botfleet/internal/infra/repository"
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/logger"
	"botfleet/pkg/validator"

	_ "github.com/mattn/go-sqlite3"
)

// fakeSupervisor stands in for the fleet supervisor; it runs no workers and
// only records which bots were stopped, started and restarted.
type fakeSupervisor struct {
	stopped, started, restarted []bot.ID
}

func (f *fakeSupervisor) Stop(ctx context.Context, id bot.ID) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeSupervisor) Start(ctx context.Context, id bot.ID) error {
	f.started = append(f.started, id)
	return nil
}

func (f *fakeSupervisor) Restart(ctx context.Context, id bot.ID) error {
	f.restarted = append(f.restarted, id)
	return nil
}

// fakeAuthRoot records container moves without touching the filesystem.
type fakeAuthRoot struct {
	moves [][3]string
}

func (f *fakeAuthRoot) Move(fromTenant, toTenant, botID string) error {
	f.moves = append(f.moves, [3]string{fromTenant, toTenant, botID})
	return nil
}

func wireEncode(t *testing.T, raw string) string {
	t.Helper()
	return credential.Encode([]byte(raw))
}

type testEngine struct {
	engine     *registration.Engine
	db         *bun.DB
	tenantRepo tenant.Repository
	botRepo    bot.Repository
	supervisor *fakeSupervisor
	authRoot   *fakeAuthRoot
}

func setupEngine(t *testing.T) *testEngine {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	log := &logger.NoopLogger{}
	require.NoError(t, migrations.NewMigrator(db, log).Migrate(context.Background()))

	botRepo := repository.NewBotRepository(db, log)
	tenantRepo := repository.NewTenantRepository(db, log)
	registryRepo := repository.NewRegistryRepository(db, log)
	activityRepo := repository.NewActivityRepository(db, log)
	supervisor := &fakeSupervisor{}
	authRoot := &fakeAuthRoot{}

	engine := registration.NewEngine(db, botRepo, tenantRepo, registryRepo, activityRepo, supervisor, authRoot, log, validator.New())

	return &testEngine{
		engine:     engine,
		db:         db,
		tenantRepo: tenantRepo,
		botRepo:    botRepo,
		supervisor: supervisor,
		authRoot:   authRoot,
	}
}

func createTenant(t *testing.T, te *testEngine, name string, capacity int) {
	t.Helper()
	tn, err := tenant.New(name, capacity)
	require.NoError(t, err)
	require.NoError(t, te.tenantRepo.Create(context.Background(), tn))
}

func registerReq(t *testing.T, tenantName, phone string) registration.RegisterRequest {
	t.Helper()
	raw := `{
		"creds": {
			"noiseKey": "a",
			"signedIdentityKey": "b",
			"signedPreKey": "c",
			"registrationId": 1,
			"me": {"id": "` + phone + `:1@s.whatsapp.net"}
		}
	}`
	return registration.RegisterRequest{
		Name:          "acme-bot",
		CredentialRaw: wireEncode(t, raw),
		DeclaredPhone: phone,
		Tenant:        tenantName,
	}
}

func TestEngine_Register(t *testing.T) {
	t.Run("registers a bot and increments the tenant count", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)

		resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)
		assert.Equal(t, "ACME", resp.Bot.Tenant())
		assert.Equal(t, bot.ApprovalPending, resp.Bot.ApprovalStatus())

		tn, err := te.tenantRepo.GetByName(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, 1, tn.CurrentCount())
	})

	t.Run("rejects an unknown target tenant", func(t *testing.T) {
		te := setupEngine(t)

		_, err := te.engine.Register(context.Background(), registerReq(t, "ghost", "5511999990000"))
		assert.Error(t, err)
	})

	t.Run("rejects registration when the tenant is at capacity", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 1)

		_, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990001"))
		require.NoError(t, err)

		_, err = te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990002"))
		var botErr *bot.Error
		require.ErrorAs(t, err, &botErr)
		assert.Equal(t, bot.ErrCodeTenantFull, botErr.Code)
	})

	t.Run("rejects a declared phone that doesn't match the credential", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)

		req := registerReq(t, "acme", "5511999990000")
		req.DeclaredPhone = "5511888880000"

		_, err := te.engine.Register(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("rejects the same phone registering twice on the same tenant", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)

		_, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)

		_, err = te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		var botErr *bot.Error
		require.ErrorAs(t, err, &botErr)
		assert.Equal(t, bot.ErrCodeDuplicateThis, botErr.Code)
	})

	t.Run("rejects a phone already registered on another tenant", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)
		createTenant(t, te, "globex", 5)

		_, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)

		_, err = te.engine.Register(context.Background(), registerReq(t, "globex", "5511999990000"))
		var botErr *bot.Error
		require.ErrorAs(t, err, &botErr)
		assert.Equal(t, bot.ErrCodeDuplicateOther, botErr.Code)
	})
}

func TestEngine_ApproveRejectRevoke(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)
	resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)

	t.Run("approve grants an approval window", func(t *testing.T) {
		b, err := te.engine.Approve(context.Background(), resp.Bot.ID(), 3)
		require.NoError(t, err)
		assert.True(t, b.IsApproved())
	})

	t.Run("revoke returns the bot to pending", func(t *testing.T) {
		b, err := te.engine.Revoke(context.Background(), resp.Bot.ID())
		require.NoError(t, err)
		assert.Equal(t, bot.ApprovalPending, b.ApprovalStatus())
	})

	t.Run("reject is terminal", func(t *testing.T) {
		b, err := te.engine.Reject(context.Background(), resp.Bot.ID())
		require.NoError(t, err)
		assert.Equal(t, bot.ApprovalRejected, b.ApprovalStatus())
	})
}

func TestEngine_UpdateCredentials(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)
	resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)

	newRaw := credential.Encode([]byte(`{"updated":true}`))
	b, err := te.engine.UpdateCredentials(context.Background(), resp.Bot.ID(), newRaw)
	require.NoError(t, err)
	assert.Contains(t, string(b.Credentials()), "updated")
}

func TestEngine_CheckRegistration(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)
	createTenant(t, te, "globex", 5)

	t.Run("not registered anywhere", func(t *testing.T) {
		result, err := te.engine.CheckRegistration(context.Background(), "5511999990099", "acme")
		require.NoError(t, err)
		assert.False(t, result.Registered)
		assert.False(t, result.HasBotHere)
		assert.Nil(t, result.Bot)
	})

	resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)

	t.Run("registered and hosted on the checking tenant", func(t *testing.T) {
		result, err := te.engine.CheckRegistration(context.Background(), "5511999990000", "acme")
		require.NoError(t, err)
		assert.True(t, result.Registered)
		assert.Equal(t, "ACME", result.HostingTenant)
		assert.True(t, result.HasBotHere)
		require.NotNil(t, result.Bot)
		assert.Equal(t, resp.Bot.ID(), result.Bot.ID())
	})

	t.Run("registered elsewhere, not hosted here", func(t *testing.T) {
		result, err := te.engine.CheckRegistration(context.Background(), "5511999990000", "globex")
		require.NoError(t, err)
		assert.True(t, result.Registered)
		assert.Equal(t, "ACME", result.HostingTenant)
		assert.False(t, result.HasBotHere)
		assert.Nil(t, result.Bot)
	})
}

func TestEngine_Migrate(t *testing.T) {
	t.Run("moves a bot between tenants and adjusts both counters", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)
		createTenant(t, te, "globex", 5)

		resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)

		b, err := te.engine.Migrate(context.Background(), resp.Bot.ID(), "globex")
		require.NoError(t, err)
		assert.Equal(t, "GLOBEX", b.Tenant())

		src, err := te.tenantRepo.GetByName(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, 0, src.CurrentCount())

		dst, err := te.tenantRepo.GetByName(context.Background(), "globex")
		require.NoError(t, err)
		assert.Equal(t, 1, dst.CurrentCount())

		assert.Len(t, te.supervisor.stopped, 1)
		assert.Len(t, te.authRoot.moves, 1)
	})

	t.Run("rejects migrating a bot to its current tenant", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)

		resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)

		_, err = te.engine.Migrate(context.Background(), resp.Bot.ID(), "acme")
		var botErr *bot.Error
		require.ErrorAs(t, err, &botErr)
		assert.Equal(t, bot.ErrCodeMigrationSame, botErr.Code)
	})

	t.Run("rejects migrating into a full tenant", func(t *testing.T) {
		te := setupEngine(t)
		createTenant(t, te, "acme", 5)
		createTenant(t, te, "globex", 1)

		_, err := te.engine.Register(context.Background(), registerReq(t, "globex", "5511999990001"))
		require.NoError(t, err)

		resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
		require.NoError(t, err)

		_, err = te.engine.Migrate(context.Background(), resp.Bot.ID(), "globex")
		var botErr *bot.Error
		require.ErrorAs(t, err, &botErr)
		assert.Equal(t, bot.ErrCodeTenantFull, botErr.Code)
	})
}

func TestEngine_ExpireSweep(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)

	resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)
	_, err = te.engine.Approve(context.Background(), resp.Bot.ID(), 1)
	require.NoError(t, err)

	b, err := te.botRepo.GetByID(context.Background(), resp.Bot.ID())
	require.NoError(t, err)
	past := time.Now().AddDate(0, -2, 0)
	expired := bot.Restore(
		b.ID(), b.Name(), b.Phone(), b.Credentials(), b.Tenant(), b.IsGuest(),
		b.Status(), bot.ApprovalApproved, &past, 1,
		b.Features(), b.MessagesSent(), b.MessagesReceived(), b.CreatedAt(), b.UpdatedAt(),
	)
	require.NoError(t, te.botRepo.Update(context.Background(), expired))

	count, err := te.engine.ExpireSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	reloaded, err := te.botRepo.GetByID(context.Background(), resp.Bot.ID())
	require.NoError(t, err)
	assert.Equal(t, bot.ApprovalDormant, reloaded.ApprovalStatus())
}

func TestEngine_Batch(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)

	resp1, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)
	resp2, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990001"))
	require.NoError(t, err)

	unknown, err := bot.IDFromString(bot.NewID().String())
	require.NoError(t, err)

	result := te.engine.Batch(context.Background(), []bot.ID{resp1.Bot.ID(), resp2.Bot.ID(), unknown}, registration.BatchApply{
		Op:             registration.BatchOpApprove,
		ApprovalMonths: 2,
	})

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Completed)
	assert.Len(t, result.Failed, 1)
}

func TestEngine_Batch_StartDispatchesToSupervisor(t *testing.T) {
	te := setupEngine(t)
	createTenant(t, te, "acme", 5)

	resp, err := te.engine.Register(context.Background(), registerReq(t, "acme", "5511999990000"))
	require.NoError(t, err)

	result := te.engine.Batch(context.Background(), []bot.ID{resp.Bot.ID()}, registration.BatchApply{
		Op: registration.BatchOpStart,
	})

	assert.Equal(t, 1, result.Completed)
	assert.Contains(t, te.supervisor.started, resp.Bot.ID())
}
