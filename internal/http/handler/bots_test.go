package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/http/dto"
	"botfleet/internal/http/handler"
	"botfleet/internal/usecases/botops"
	"botfleet/pkg/logger"
)

type fakeSupervisor struct {
	startErr error
}

func (f *fakeSupervisor) Start(ctx context.Context, id bot.ID) error   { return f.startErr }
func (f *fakeSupervisor) Stop(ctx context.Context, id bot.ID) error    { return nil }
func (f *fakeSupervisor) Restart(ctx context.Context, id bot.ID) error { return nil }
func (f *fakeSupervisor) Destroy(ctx context.Context, id bot.ID) error { return nil }
func (f *fakeSupervisor) SendMessage(ctx context.Context, id bot.ID, to, message string) error {
	return nil
}
func (f *fakeSupervisor) ResumeTenant(ctx context.Context, tenantName string) error { return nil }

type fakeBotRepo struct{ bots map[bot.ID]*bot.Bot }

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
		out = append(out, b)
	}
	return out, len(out), nil
}
func (r *fakeBotRepo) ListByApprovalStatus(ctx context.Context, status bot.ApprovalStatus, limit, offset int) ([]*bot.Bot, int, error) {
	return nil, 0, nil
}
func (r *fakeBotRepo) Update(ctx context.Context, b *bot.Bot) error          { return nil }
func (r *fakeBotRepo) Delete(ctx context.Context, id bot.ID) error          { return nil }
func (r *fakeBotRepo) CountByTenant(ctx context.Context, t string) (int, error) { return 0, nil }
func (r *fakeBotRepo) Exists(ctx context.Context, id bot.ID) (bool, error)   { return false, nil }

type fakeTenantRepo struct{ tenants []*tenant.Tenant }

func (r *fakeTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }
func (r *fakeTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}
func (r *fakeTenantRepo) List(ctx context.Context) ([]*tenant.Tenant, error) { return r.tenants, nil }
func (r *fakeTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error { return nil }
func (r *fakeTenantRepo) Exists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) dto.SuccessResponse {
	t.Helper()
	var resp dto.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, ctx))
}

func TestBotOpsHandler_StartSuccess(t *testing.T) {
	b := bot.NewBot("acme-bot", mustPhone(t), []byte("creds"), "acme", false, bot.Features{})
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{b.ID(): b}}, &fakeTenantRepo{})
	h := handler.NewBotOpsHandler(uc, &logger.NoopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/bots/"+b.ID().String()+"/start", nil)
	req = withURLParam(req, "id", b.ID().String())
	rec := httptest.NewRecorder()

	h.Start(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSuccess(t, rec)
	assert.True(t, resp.Success)
}

func TestBotOpsHandler_StartInvalidID(t *testing.T) {
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{})
	h := handler.NewBotOpsHandler(uc, &logger.NoopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/bots/not-a-uuid/start", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.Start(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBotOpsHandler_SendMessageRequiresBody(t *testing.T) {
	b := bot.NewBot("acme-bot", mustPhone(t), []byte("creds"), "acme", false, bot.Features{})
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{b.ID(): b}}, &fakeTenantRepo{})
	h := handler.NewBotOpsHandler(uc, &logger.NoopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/bots/"+b.ID().String()+"/messages", strings.NewReader("not json"))
	req = withURLParam(req, "id", b.ID().String())
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantHandler_List(t *testing.T) {
	tn, err := tenant.New("acme", 10)
	require.NoError(t, err)
	uc := botops.New(&fakeSupervisor{}, &fakeBotRepo{bots: map[bot.ID]*bot.Bot{}}, &fakeTenantRepo{tenants: []*tenant.Tenant{tn}})
	h := handler.NewTenantHandler(uc, &logger.NoopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSuccess(t, rec)
	assert.True(t, resp.Success)
}

func mustPhone(t *testing.T) bot.Phone {
	t.Helper()
	p, err := bot.NewPhone("+5511999990000")
	require.NoError(t, err)
	return p
}
