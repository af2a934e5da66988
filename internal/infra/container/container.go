package container

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver for whatsmeow
	"github.com/uptrace/bun"
	"go.mau.fi/whatsmeow/store/sqlstore"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/pairing"
	"botfleet/internal/domain/registry"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/authstore"
	"botfleet/internal/infra/config"
	"botfleet/internal/infra/database"
	"botfleet/internal/infra/database/migrations"
	"botfleet/internal/infra/fleet"
	infraLogger "botfleet/internal/infra/logger"
	infraPairing "botfleet/internal/infra/pairing"
	"botfleet/internal/infra/repository"
	"botfleet/internal/infra/whats"
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/logger"
	"botfleet/pkg/validator"
)

// Container holds all infrastructure dependencies
type Container struct {
	// Configuration
	Config *config.Config

	// Core infrastructure
	Logger    logger.Logger
	Validator validator.Validator
	DB        *bun.DB

	// Database components
	DBConnection database.Connection
	Migrator     *migrations.Migrator

	// Repositories
	BotRepo      bot.Repository
	TenantRepo   tenant.Repository
	RegistryRepo registry.Repository
	ActivityRepo activity.Repository
	PairingRepo  pairing.Repository

	// WhatsApp device store and fleet runtime
	WhatsAppStore *sqlstore.Container
	AuthRoot      *authstore.Root
	Ledger        *fleet.FailureLedger
	Supervisor    *fleet.Supervisor

	// Registration engine and guest pairing service
	RegistrationEngine *registration.Engine
	PairingService     *infraPairing.Service

	// Internal state
	isInitialized bool
}

// New creates a new infrastructure container
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	if err := container.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	return container, nil
}

// initialize sets up all infrastructure components
func (c *Container) initialize() error {
	if err := c.initializeLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.Logger.Info("initializing infrastructure container")

	if err := c.initializeValidator(); err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}

	if err := c.initializeDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := c.initializeRepositories(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := c.initializeFleet(); err != nil {
		return fmt.Errorf("failed to initialize fleet runtime: %w", err)
	}

	c.initializeRegistrationAndPairing()

	c.isInitialized = true
	c.Logger.Info("infrastructure container initialized successfully")

	return nil
}

// initializeLogger sets up the logger
func (c *Container) initializeLogger() error {
	c.Logger = infraLogger.New(&c.Config.Log)
	return nil
}

// initializeValidator sets up the validator
func (c *Container) initializeValidator() error {
	c.Validator = validator.New()
	return nil
}

// initializeDatabase sets up the database connection and migrations
func (c *Container) initializeDatabase() error {
	dbConn, err := database.New(&c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	c.DBConnection = dbConn
	c.DB = dbConn.GetDB()

	c.Migrator = migrations.NewMigrator(c.DB, c.Logger)

	if c.Config.Database.AutoMigrate {
		ctx := context.Background()
		if err := c.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	return nil
}

// initializeRepositories sets up all repositories
func (c *Container) initializeRepositories() error {
	c.BotRepo = repository.NewBotRepository(c.DB, c.Logger)
	c.TenantRepo = repository.NewTenantRepository(c.DB, c.Logger)
	c.RegistryRepo = repository.NewRegistryRepository(c.DB, c.Logger)
	c.ActivityRepo = repository.NewActivityRepository(c.DB, c.Logger)
	c.PairingRepo = repository.NewInMemoryPairingRepository()

	c.Logger.Info("repositories initialized")
	return nil
}

// initializeFleet wires the whatsmeow device store, the on-disk credential
// root, the failure ledger, and the bot supervisor that owns every worker.
func (c *Container) initializeFleet() error {
	dbURL := c.Config.Database.URL
	dbDriver := c.Config.Database.Driver

	switch dbDriver {
	case "sqlite", "sqlite3":
		dbDriver = "sqlite3"
		if !strings.Contains(dbURL, ":memory:") && !strings.Contains(dbURL, "mode=memory") && !strings.Contains(dbURL, "_foreign_keys") {
			if strings.Contains(dbURL, "?") {
				dbURL += "&_foreign_keys=on"
			} else {
				dbURL += "?_foreign_keys=on"
			}
		}
	case "postgres", "postgresql":
		dbDriver = "postgres"
	default:
		return fmt.Errorf("unsupported database driver for WhatsApp store: %s", dbDriver)
	}

	waLogger := whats.NewLoggerAdapter(c.Logger, "whatsapp")

	whatsappStore, err := sqlstore.New(context.Background(), dbDriver, dbURL, waLogger)
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp store: %w", err)
	}
	if err := whatsappStore.Upgrade(context.Background()); err != nil {
		return fmt.Errorf("failed to upgrade WhatsApp store: %w", err)
	}
	c.WhatsAppStore = whatsappStore

	c.AuthRoot = authstore.NewRoot(c.Config.Fleet.AuthDir)

	ledger, err := fleet.NewFailureLedger(c.Config.Fleet.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to load failure ledger: %w", err)
	}
	c.Ledger = ledger

	c.Supervisor = fleet.NewSupervisor(
		c.BotRepo,
		c.TenantRepo,
		c.ActivityRepo,
		c.Ledger,
		c.AuthRoot,
		c.WhatsAppStore,
		c.Logger,
	)

	c.Logger.Info("fleet runtime initialized")
	return nil
}

// initializeRegistrationAndPairing wires the registration engine over the
// repositories and fleet runtime, and the ephemeral guest pairing service
// over the shared device store.
func (c *Container) initializeRegistrationAndPairing() {
	c.RegistrationEngine = registration.NewEngine(
		c.DB,
		c.BotRepo,
		c.TenantRepo,
		c.RegistryRepo,
		c.ActivityRepo,
		c.Supervisor,
		c.AuthRoot,
		c.Logger,
		c.Validator,
	)

	c.PairingService = infraPairing.NewService(c.WhatsAppStore, c.PairingRepo, c.Logger)

	c.Logger.Info("registration engine and pairing service initialized")
}

// Close gracefully shuts down all infrastructure components
func (c *Container) Close() error {
	if !c.isInitialized {
		return nil
	}

	c.Logger.Info("shutting down infrastructure container")

	var errs []error

	if c.Supervisor != nil {
		c.Supervisor.StopAll(context.Background())
	}

	if c.WhatsAppStore != nil {
		if err := c.WhatsAppStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close WhatsApp store: %w", err))
		}
	}

	if c.DBConnection != nil {
		if err := c.DBConnection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	if len(errs) > 0 {
		for _, err := range errs {
			c.Logger.ErrorWithError("error during container shutdown", err, nil)
		}
		return fmt.Errorf("multiple errors during shutdown: %v", errs)
	}

	c.Logger.Info("infrastructure container shut down successfully")
	return nil
}

// Health checks the health of all infrastructure components
func (c *Container) Health() error {
	if !c.isInitialized {
		return fmt.Errorf("container not initialized")
	}

	if err := c.DBConnection.Health(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// IsInitialized returns true if the container is initialized
func (c *Container) IsInitialized() bool {
	return c.isInitialized
}

// GetDatabaseStats returns database connection statistics
func (c *Container) GetDatabaseStats() interface{} {
	if c.DB == nil {
		return sql.DBStats{}
	}
	return c.DB.DB.Stats()
}

// ResetDatabase drops and recreates all database tables
func (c *Container) ResetDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}

	c.Logger.Warn("resetting database")
	ctx := context.Background()
	return c.Migrator.Reset(ctx)
}

// MigrateDatabase runs database migrations
func (c *Container) MigrateDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}

	c.Logger.Info("running database migrations")
	ctx := context.Background()
	return c.Migrator.Migrate(ctx)
}
