package registration

import (
	"context"
	"fmt"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/tenant"
	"botfleet/pkg/logger"
)

// Migrate moves a bot from its current tenant to toTenant: it rejects
// same-tenant migrations and migrations to a tenant without spare
// capacity, stops the worker on its source tenant, updates the bot row,
// the registry entry, and both tenants' counters, relocates the on-disk
// container directory, restarts the worker on the destination if the bot
// is still approved, and records a migration activity on both tenants.
func (e *Engine) Migrate(ctx context.Context, id bot.ID, toTenant string) (*bot.Bot, error) {
	toTenantName := tenant.Normalize(toTenant)

	b, err := e.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromTenant := b.Tenant()
	if fromTenant == toTenantName {
		return nil, bot.NewMigrationSameTenantError(toTenantName)
	}

	dest, err := e.tenantRepo.GetByName(ctx, toTenantName)
	if err != nil {
		return nil, fmt.Errorf("failed to load destination tenant: %w", err)
	}
	if !dest.HasCapacity() {
		return nil, bot.NewTenantFullError(toTenantName)
	}

	src, err := e.tenantRepo.GetByName(ctx, fromTenant)
	if err != nil {
		return nil, fmt.Errorf("failed to load source tenant: %w", err)
	}

	if err := e.supervisor.Stop(ctx, id); err != nil {
		e.logger.WarnWithError("failed to stop bot before migration, continuing", err, logger.Fields{"bot_id": id.String()})
	}

	b.SetTenant(toTenantName)
	if err := e.botRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update bot tenant: %w", err)
	}
	if err := e.registryRepo.UpdateTenant(ctx, b.Phone().String(), toTenantName); err != nil {
		return nil, fmt.Errorf("failed to update registry tenant: %w", err)
	}

	src.Decrement()
	if err := e.tenantRepo.Update(ctx, src); err != nil {
		return nil, fmt.Errorf("failed to update source tenant count: %w", err)
	}
	if err := dest.Increment(); err != nil {
		return nil, fmt.Errorf("destination tenant capacity changed mid-migration: %w", err)
	}
	if err := e.tenantRepo.Update(ctx, dest); err != nil {
		return nil, fmt.Errorf("failed to update destination tenant count: %w", err)
	}

	if err := e.authRoot.Move(fromTenant, toTenantName, id.String()); err != nil {
		e.logger.ErrorWithError("failed to relocate bot container directory", err, logger.Fields{"bot_id": id.String()})
	}

	if b.IsApproved() {
		if err := e.supervisor.Start(ctx, id); err != nil {
			e.logger.WarnWithError("failed to restart bot on destination tenant", err, logger.Fields{"bot_id": id.String()})
		}
	}

	detail := fmt.Sprintf("migrated from %s to %s", fromTenant, toTenantName)
	_ = e.activityRepo.Append(ctx, activity.New(id.String(), fromTenant, activity.KindMigration, detail))
	_ = e.activityRepo.Append(ctx, activity.New(id.String(), toTenantName, activity.KindMigration, detail))

	e.logger.InfoWithFields("bot migrated", logger.Fields{
		"bot_id": id.String(),
		"from":   fromTenant,
		"to":     toTenantName,
	})

	return b, nil
}
