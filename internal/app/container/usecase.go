package container

import (
	"fmt"

	"botfleet/internal/infra/container"
	"botfleet/internal/usecases/botops"
	pairingUC "botfleet/internal/usecases/pairing"
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/logger"
)

// useCaseContainer implements UseCaseContainer interface
type useCaseContainer struct {
	registrationEngine *registration.Engine
	botOps             *botops.UseCase
	pairing            *pairingUC.UseCase
	logger             logger.Logger
	isInitialized      bool
}

// NewUseCaseContainer creates a new use case container
func NewUseCaseContainer(infraContainer *container.Container) (UseCaseContainer, error) {
	uc := &useCaseContainer{
		logger: infraContainer.Logger,
	}

	if err := uc.initialize(infraContainer); err != nil {
		return nil, fmt.Errorf("failed to initialize use case container: %w", err)
	}

	return uc, nil
}

// initialize sets up all use cases
func (uc *useCaseContainer) initialize(infraContainer *container.Container) error {
	logger := infraContainer.Logger

	uc.registrationEngine = infraContainer.RegistrationEngine

	uc.botOps = botops.New(
		infraContainer.Supervisor,
		infraContainer.BotRepo,
		infraContainer.TenantRepo,
	)

	uc.pairing = pairingUC.New(infraContainer.PairingService)

	uc.isInitialized = true
	logger.Info("use case container initialized successfully")
	return nil
}

// GetRegistrationEngine returns the registration engine
func (uc *useCaseContainer) GetRegistrationEngine() *registration.Engine {
	return uc.registrationEngine
}

// GetBotOps returns the bot operations usecase
func (uc *useCaseContainer) GetBotOps() *botops.UseCase {
	return uc.botOps
}

// GetPairingUseCase returns the guest pairing usecase
func (uc *useCaseContainer) GetPairingUseCase() *pairingUC.UseCase {
	return uc.pairing
}
