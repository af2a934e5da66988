package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/infra/database"
	"botfleet/pkg/logger"
)

// Migrator handles database migrations
type Migrator struct {
	db     *bun.DB
	logger logger.Logger
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *bun.DB, log logger.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: log,
	}
}

// models lists every table this migrator owns, in dependency order: tenants
// and bots can be created in either order since neither declares a foreign
// key to the other at the storage layer (capacity bookkeeping is done in the
// application, not via constraints), but registry and activity logically
// follow bots.
func (m *Migrator) models() []interface{} {
	return []interface{}{
		(*database.TenantModel)(nil),
		(*database.BotModel)(nil),
		(*database.RegistryModel)(nil),
		(*database.ActivityModel)(nil),
	}
}

// Migrate runs all database migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	m.logger.Info("starting database migrations")

	for _, model := range m.models() {
		if err := m.createTable(ctx, model); err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := m.createTriggers(ctx); err != nil {
		return fmt.Errorf("failed to create triggers: %w", err)
	}

	m.logger.Info("database migrations completed successfully")
	return nil
}

// createTable creates a table if it doesn't exist
func (m *Migrator) createTable(ctx context.Context, model interface{}) error {
	tableName := tableNameOf(model)

	m.logger.InfoWithFields("creating table", logger.Fields{
		"table": tableName,
	})

	query := m.db.NewCreateTable().
		Model(model).
		IfNotExists()

	sqlQuery, args := query.AppendQuery(m.db.Formatter(), nil)
	m.logger.DebugWithFields("executing create table query", logger.Fields{
		"table": tableName,
		"sql":   string(sqlQuery),
		"args":  args,
	})

	if _, err := query.Exec(ctx); err != nil {
		m.logger.ErrorWithError("failed to create table", err, logger.Fields{
			"table": tableName,
			"sql":   string(sqlQuery),
		})
		return err
	}

	m.logger.InfoWithFields("table created or verified", logger.Fields{
		"table": tableName,
	})

	return nil
}

// createIndexes creates database indexes
func (m *Migrator) createIndexes(ctx context.Context) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_fleet_bots_tenant ON fleet_bots(tenant)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_bots_status ON fleet_bots(status)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_bots_approval_status ON fleet_bots(approval_status)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_fleet_bots_phone ON fleet_bots(phone)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_bots_created_at ON fleet_bots(created_at)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_fleet_registry_phone ON fleet_registry(phone)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_registry_tenant ON fleet_registry(tenant)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_activity_bot_id ON fleet_activity(bot_id)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_activity_tenant ON fleet_activity(tenant)",
		"CREATE INDEX IF NOT EXISTS idx_fleet_activity_created_at ON fleet_activity(created_at)",
	}

	for _, indexSQL := range indexes {
		if _, err := m.db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", indexSQL, err)
		}
	}

	m.logger.InfoWithFields("database indexes created", logger.Fields{
		"count": len(indexes),
	})

	return nil
}

// createTriggers creates database triggers for automatic updated_at timestamps
func (m *Migrator) createTriggers(ctx context.Context) error {
	dialectName := fmt.Sprintf("%T", m.db.Dialect())

	var triggers []string

	switch dialectName {
	case "*sqlitedialect.Dialect":
		triggers = []string{
			`CREATE TRIGGER IF NOT EXISTS update_fleet_bots_updated_at
			 AFTER UPDATE ON fleet_bots
			 BEGIN
			   UPDATE fleet_bots SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
			 END`,
			`CREATE TRIGGER IF NOT EXISTS update_fleet_tenants_updated_at
			 AFTER UPDATE ON fleet_tenants
			 BEGIN
			   UPDATE fleet_tenants SET updated_at = CURRENT_TIMESTAMP WHERE name = NEW.name;
			 END`,
		}
	case "*pgdialect.Dialect":
		triggers = []string{
			`CREATE OR REPLACE FUNCTION update_updated_at_column()
			 RETURNS TRIGGER AS $$
			 BEGIN
			   NEW.updated_at = CURRENT_TIMESTAMP;
			   RETURN NEW;
			 END;
			 $$ language 'plpgsql'`,

			`DROP TRIGGER IF EXISTS update_fleet_bots_updated_at ON fleet_bots`,
			`CREATE TRIGGER update_fleet_bots_updated_at
			 BEFORE UPDATE ON fleet_bots
			 FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()`,

			`DROP TRIGGER IF EXISTS update_fleet_tenants_updated_at ON fleet_tenants`,
			`CREATE TRIGGER update_fleet_tenants_updated_at
			 BEFORE UPDATE ON fleet_tenants
			 FOR EACH ROW EXECUTE FUNCTION update_updated_at_column()`,
		}
	default:
		m.logger.WarnWithFields("unknown database type, skipping triggers", logger.Fields{
			"database": dialectName,
		})
		return nil
	}

	for _, triggerSQL := range triggers {
		if _, err := m.db.ExecContext(ctx, triggerSQL); err != nil {
			return fmt.Errorf("failed to create trigger: %s: %w", triggerSQL, err)
		}
	}

	m.logger.InfoWithFields("database triggers created", logger.Fields{
		"count":    len(triggers),
		"database": dialectName,
	})

	return nil
}

// Drop drops all tables (useful for testing)
func (m *Migrator) Drop(ctx context.Context) error {
	m.logger.Warn("dropping all database tables")

	models := m.models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.dropTable(ctx, models[i]); err != nil {
			return fmt.Errorf("failed to drop table for model %T: %w", models[i], err)
		}
	}

	m.logger.Info("all database tables dropped")
	return nil
}

// dropTable drops a table
func (m *Migrator) dropTable(ctx context.Context, model interface{}) error {
	_, err := m.db.NewDropTable().
		Model(model).
		IfExists().
		Exec(ctx)

	if err != nil {
		return err
	}

	m.logger.InfoWithFields("table dropped", logger.Fields{
		"table": tableNameOf(model),
	})

	return nil
}

// Reset drops and recreates all tables
func (m *Migrator) Reset(ctx context.Context) error {
	m.logger.Warn("resetting database (drop and recreate all tables)")

	if err := m.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to recreate tables: %w", err)
	}

	m.logger.Info("database reset completed")
	return nil
}

func tableNameOf(model interface{}) string {
	switch model.(type) {
	case *database.BotModel:
		return "fleet_bots"
	case *database.TenantModel:
		return "fleet_tenants"
	case *database.RegistryModel:
		return "fleet_registry"
	case *database.ActivityModel:
		return "fleet_activity"
	default:
		return "unknown"
	}
}
