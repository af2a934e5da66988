package container

import (
	"context"

	"botfleet/internal/http/server"
	"botfleet/internal/infra/config"
	"botfleet/internal/usecases/botops"
	pairingUC "botfleet/internal/usecases/pairing"
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/logger"
)

// Container defines the interface for application containers
type Container interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	Health() error
	Close() error
	IsInitialized() bool
}

// UseCaseContainer defines the interface for use case management
type UseCaseContainer interface {
	GetRegistrationEngine() *registration.Engine
	GetBotOps() *botops.UseCase
	GetPairingUseCase() *pairingUC.UseCase
}

// HTTPContainer defines the interface for HTTP layer management
type HTTPContainer interface {
	GetServerManager() *server.ServerManager
	GetServerInfo() server.ServerInfo
	StartServer(ctx context.Context) error
}
