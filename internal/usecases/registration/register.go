// Package registration implements the registration engine: validating and
// admitting new bots, approving/rejecting/revoking them, migrating them
// between tenants, and sweeping expired approvals.
package registration

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/credential"
	"botfleet/internal/domain/registry"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/repository"
	"botfleet/pkg/errors"
	"botfleet/pkg/logger"
	"botfleet/pkg/validator"
)

// workerControl is the subset of the fleet supervisor the registration
// engine needs to stop a migrating bot on its source tenant and restart it
// on its destination.
type workerControl interface {
	Stop(ctx context.Context, id bot.ID) error
	Start(ctx context.Context, id bot.ID) error
	Restart(ctx context.Context, id bot.ID) error
}

// containerMover is the subset of the on-disk credential root the engine
// needs to relocate a bot's container directory during migration.
type containerMover interface {
	Move(fromTenant, toTenant, botID string) error
}

// Engine wires the registration algorithm over the bot, tenant, registry,
// and activity repositories, and a raw database handle for the
// single-transaction admission path.
type Engine struct {
	db           *bun.DB
	botRepo      bot.Repository
	tenantRepo   tenant.Repository
	registryRepo registry.Repository
	activityRepo activity.Repository
	supervisor   workerControl
	authRoot     containerMover
	logger       logger.Logger
	validator    validator.Validator
}

// NewEngine constructs a registration engine.
func NewEngine(
	db *bun.DB,
	botRepo bot.Repository,
	tenantRepo tenant.Repository,
	registryRepo registry.Repository,
	activityRepo activity.Repository,
	supervisor workerControl,
	authRoot containerMover,
	log logger.Logger,
	v validator.Validator,
) *Engine {
	return &Engine{
		db:           db,
		botRepo:      botRepo,
		tenantRepo:   tenantRepo,
		registryRepo: registryRepo,
		activityRepo: activityRepo,
		supervisor:   supervisor,
		authRoot:     authRoot,
		logger:       log,
		validator:    v,
	}
}

// RegisterRequest is the input to Register.
type RegisterRequest struct {
	Name          string `validate:"required"`
	CredentialRaw string `validate:"required"`
	DeclaredPhone string `validate:"required"`
	Tenant        string `validate:"required"`
	IsGuest       bool
	Features      bot.Features
}

// RegisterResponse is the result of a successful registration.
type RegisterResponse struct {
	Bot *bot.Bot
}

// Register runs the full admission algorithm: decode and structurally
// validate the credential blob, extract the phone and compare it against
// the declared phone, validate the target tenant has capacity, cross-check
// the phone against the global registry, then persist the bot row and the
// registry entry in a single transaction before recording a creation
// activity.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := e.validator.Validate(req); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	doc, err := credential.Parse(req.CredentialRaw)
	if err != nil {
		return nil, errors.NewValidationError("invalid credential payload").WithCause(err)
	}

	extractedPhone, err := doc.ExtractPhone()
	if err != nil {
		return nil, errors.NewValidationError("could not extract phone from credential").WithCause(err)
	}

	declaredPhone, err := bot.NewPhone(req.DeclaredPhone)
	if err != nil {
		return nil, errors.NewValidationError("invalid declared phone number").WithCause(err)
	}
	if extractedPhone != declaredPhone.String() {
		return nil, errors.NewValidationError(credential.ErrPhoneMismatch.Error())
	}

	targetTenantName := tenant.Normalize(req.Tenant)
	targetTenant, err := e.tenantRepo.GetByName(ctx, targetTenantName)
	if err != nil {
		if stderrors.Is(err, tenant.ErrTenantNotFound) {
			return nil, bot.NewTenantUnknownError(targetTenantName)
		}
		return nil, fmt.Errorf("failed to load target tenant: %w", err)
	}
	if !targetTenant.IsActive() {
		return nil, bot.New(bot.ErrCodeTenantUnknown, "target tenant is suspended").WithContext("tenant", targetTenantName)
	}
	if !targetTenant.HasCapacity() {
		return nil, bot.NewTenantFullError(targetTenantName)
	}

	regEntry, err := e.registryRepo.Lookup(ctx, declaredPhone.String())
	if err != nil && err != registry.ErrEntryNotFound {
		return nil, fmt.Errorf("failed to look up registry entry: %w", err)
	}
	var entry *registry.Entry
	if err == nil {
		entry = regEntry
	}

	localExists := false
	if _, err := e.botRepo.GetByPhone(ctx, declaredPhone); err == nil {
		localExists = true
	} else if !bot.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check for local bot row: %w", err)
	}

	switch result, otherTenant := credential.CrossCheck(targetTenantName, entry, localExists); result {
	case credential.ResultDuplicateOnThisTenant:
		return nil, bot.NewDuplicateOnThisTenantError(declaredPhone.String())
	case credential.ResultDuplicateOnOtherTenant:
		return nil, bot.NewDuplicateOnOtherTenantError(declaredPhone.String(), otherTenant)
	case credential.ResultInconsistentLocalBot:
		return nil, bot.NewInconsistentLocalBotError(declaredPhone.String())
	}

	raw, err := credential.Decode(req.CredentialRaw)
	if err != nil {
		return nil, errors.NewValidationError("invalid credential encoding").WithCause(err)
	}

	newBot := bot.NewBot(req.Name, declaredPhone, raw, targetTenantName, req.IsGuest, req.Features)
	if err := newBot.Validate(); err != nil {
		return nil, err
	}

	if err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		txBots := repository.NewBotRepository(tx, e.logger)
		txRegistry := repository.NewRegistryRepository(tx, e.logger)
		txTenants := repository.NewTenantRepository(tx, e.logger)
		txActivity := repository.NewActivityRepository(tx, e.logger)

		if err := txBots.Create(ctx, newBot); err != nil {
			return fmt.Errorf("failed to persist bot row: %w", err)
		}
		if err := txRegistry.Insert(ctx, registry.New(declaredPhone.String(), targetTenantName, newBot.ID().String())); err != nil {
			return fmt.Errorf("failed to insert registry entry: %w", err)
		}
		if err := targetTenant.Increment(); err != nil {
			return err
		}
		if err := txTenants.Update(ctx, targetTenant); err != nil {
			return fmt.Errorf("failed to update tenant count: %w", err)
		}
		if err := txActivity.Append(ctx, activity.New(newBot.ID().String(), targetTenantName, activity.KindCreation, "bot registered")); err != nil {
			return fmt.Errorf("failed to record creation activity: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	e.logger.InfoWithFields("bot registered", logger.Fields{
		"bot_id": newBot.ID().String(),
		"tenant": targetTenantName,
		"phone":  declaredPhone.String(),
	})

	return &RegisterResponse{Bot: newBot}, nil
}
