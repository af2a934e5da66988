package registration

import (
	"context"
	stderrors "errors"
	"fmt"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/credential"
	"botfleet/internal/domain/registry"
	"botfleet/internal/domain/tenant"
	"botfleet/pkg/errors"
	"botfleet/pkg/logger"
)

// Approve grants approval to a pending bot for the given number of months.
func (e *Engine) Approve(ctx context.Context, id bot.ID, months int) (*bot.Bot, error) {
	b, err := e.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Approve(months); err != nil {
		return nil, err
	}
	if err := e.botRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}
	_ = e.activityRepo.Append(ctx, activity.New(b.ID().String(), b.Tenant(), activity.KindApproval, fmt.Sprintf("approved for %d months", months)))
	e.logger.InfoWithFields("bot approved", logger.Fields{"bot_id": id.String(), "months": months})
	return b, nil
}

// Reject permanently rejects a pending bot.
func (e *Engine) Reject(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	b, err := e.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Reject()
	if err := e.botRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to persist rejection: %w", err)
	}
	_ = e.activityRepo.Append(ctx, activity.New(b.ID().String(), b.Tenant(), activity.KindRejection, ""))
	e.logger.InfoWithFields("bot rejected", logger.Fields{"bot_id": id.String()})
	return b, nil
}

// Revoke clears approval on a bot, returning it to pending.
func (e *Engine) Revoke(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	b, err := e.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Revoke()
	if err := e.botRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to persist revocation: %w", err)
	}
	_ = e.activityRepo.Append(ctx, activity.New(b.ID().String(), b.Tenant(), activity.KindRevocation, ""))
	e.logger.InfoWithFields("bot approval revoked", logger.Fields{"bot_id": id.String()})
	return b, nil
}

// UpdateCredentials replaces the stored credential blob for a bot, e.g.
// after a guest re-pairs.
func (e *Engine) UpdateCredentials(ctx context.Context, id bot.ID, credentialRaw string) (*bot.Bot, error) {
	b, err := e.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, decErr := credential.Decode(credentialRaw)
	if decErr != nil {
		return nil, errors.NewValidationError("invalid credential encoding").WithCause(decErr)
	}
	b.UpdateCredentials(raw)
	if err := e.botRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to persist credential update: %w", err)
	}
	e.logger.InfoWithFields("bot credentials updated", logger.Fields{"bot_id": id.String()})
	return b, nil
}

// RegistrationCheck is the result of a phone-keyed cross-tenant lookup used
// during onboarding, before a guest attempts to register: it reports
// whether the phone is already registered anywhere, which tenant hosts it,
// and whether that hosting bot lives on the tenant making the check.
type RegistrationCheck struct {
	Registered    bool
	HostingTenant string
	CurrentTenant string
	HasBotHere    bool
	Bot           *bot.Bot
}

// CheckRegistration looks up a phone number against the global registry and
// reports whether it is already registered, on which tenant, and whether
// that registration lives on the tenant performing the check.
func (e *Engine) CheckRegistration(ctx context.Context, phoneRaw, currentTenantRaw string) (*RegistrationCheck, error) {
	phone, err := bot.NewPhone(phoneRaw)
	if err != nil {
		return nil, errors.NewValidationError("invalid phone number").WithCause(err)
	}
	currentTenantName := tenant.Normalize(currentTenantRaw)

	entry, err := e.registryRepo.Lookup(ctx, phone.String())
	if err != nil {
		if stderrors.Is(err, registry.ErrEntryNotFound) {
			return &RegistrationCheck{Registered: false, CurrentTenant: currentTenantName}, nil
		}
		return nil, fmt.Errorf("failed to look up registry entry: %w", err)
	}

	result := &RegistrationCheck{
		Registered:    true,
		HostingTenant: entry.Tenant,
		CurrentTenant: currentTenantName,
		HasBotHere:    entry.Tenant == currentTenantName,
	}

	if result.HasBotHere {
		b, err := e.botRepo.GetByPhone(ctx, phone)
		if err != nil {
			if !bot.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to load hosted bot: %w", err)
			}
		} else {
			result.Bot = b
		}
	}

	return result, nil
}
