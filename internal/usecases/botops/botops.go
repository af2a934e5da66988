// Package botops wraps the fleet supervisor behind a thin usecase-layer
// entry point for bot lifecycle operations, keeping the HTTP layer from
// reaching into infra directly.
package botops

import (
	"context"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
)

// Supervisor is the subset of the fleet supervisor this usecase needs.
type Supervisor interface {
	Start(ctx context.Context, id bot.ID) error
	Stop(ctx context.Context, id bot.ID) error
	Restart(ctx context.Context, id bot.ID) error
	Destroy(ctx context.Context, id bot.ID) error
	SendMessage(ctx context.Context, id bot.ID, to, message string) error
	ResumeTenant(ctx context.Context, tenantName string) error
}

// UseCase exposes bot lifecycle and tenant-listing operations to the HTTP
// layer.
type UseCase struct {
	supervisor Supervisor
	botRepo    bot.Repository
	tenantRepo tenant.Repository
}

// New constructs the bot operations usecase.
func New(supervisor Supervisor, botRepo bot.Repository, tenantRepo tenant.Repository) *UseCase {
	return &UseCase{supervisor: supervisor, botRepo: botRepo, tenantRepo: tenantRepo}
}

// Start brings a bot online.
func (u *UseCase) Start(ctx context.Context, id bot.ID) error {
	return u.supervisor.Start(ctx, id)
}

// Stop takes a bot offline without deleting its credentials.
func (u *UseCase) Stop(ctx context.Context, id bot.ID) error {
	return u.supervisor.Stop(ctx, id)
}

// Restart cycles a bot's connection.
func (u *UseCase) Restart(ctx context.Context, id bot.ID) error {
	return u.supervisor.Restart(ctx, id)
}

// Destroy stops a bot and permanently removes its credentials.
func (u *UseCase) Destroy(ctx context.Context, id bot.ID) error {
	return u.supervisor.Destroy(ctx, id)
}

// SendMessage delivers a text message through a bot's live connection.
func (u *UseCase) SendMessage(ctx context.Context, id bot.ID, to, message string) error {
	return u.supervisor.SendMessage(ctx, id, to, message)
}

// ResumeTenant starts every approved bot belonging to a tenant that isn't
// already running, used on application startup and after a tenant is
// unsuspended.
func (u *UseCase) ResumeTenant(ctx context.Context, tenantName string) error {
	return u.supervisor.ResumeTenant(ctx, tenantName)
}

// ListTenants returns every tenant known to the fleet.
func (u *UseCase) ListTenants(ctx context.Context) ([]*tenant.Tenant, error) {
	return u.tenantRepo.List(ctx)
}

// GetBot returns a single bot by id.
func (u *UseCase) GetBot(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	return u.botRepo.GetByID(ctx, id)
}

// ListBotsByTenant returns a page of bots belonging to a tenant, along
// with the total count across all pages.
func (u *UseCase) ListBotsByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*bot.Bot, int, error) {
	return u.botRepo.ListByTenant(ctx, tenantName, limit, offset)
}
