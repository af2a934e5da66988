package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/registry"
	"botfleet/internal/infra/database"
	"botfleet/pkg/logger"
)

// RegistryRepository implements registry.Repository using Bun ORM.
type RegistryRepository struct {
	db     bun.IDB
	logger logger.Logger
}

// NewRegistryRepository creates a new global registry repository using Bun ORM.
func NewRegistryRepository(db bun.IDB, logger logger.Logger) registry.Repository {
	return &RegistryRepository{db: db, logger: logger}
}

func (r *RegistryRepository) Lookup(ctx context.Context, phone string) (*registry.Entry, error) {
	var model database.RegistryModel
	err := r.db.NewSelect().Model(&model).Where("phone = ?", phone).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, registry.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to look up registry entry: %w", err)
	}
	return database.FromRegistryModel(&model), nil
}

func (r *RegistryRepository) Insert(ctx context.Context, e *registry.Entry) error {
	model := database.ToRegistryModel(e)
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert registry entry: %w", err)
	}
	return nil
}

func (r *RegistryRepository) UpdateTenant(ctx context.Context, phone, newTenant string) error {
	result, err := r.db.NewUpdate().
		Model((*database.RegistryModel)(nil)).
		Set("tenant = ?", newTenant).
		Where("phone = ?", phone).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update registry tenant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return registry.ErrEntryNotFound
	}
	return nil
}

func (r *RegistryRepository) Remove(ctx context.Context, phone string) error {
	result, err := r.db.NewDelete().Model((*database.RegistryModel)(nil)).Where("phone = ?", phone).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove registry entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return registry.ErrEntryNotFound
	}
	return nil
}
