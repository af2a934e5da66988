package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/tenant"
	"botfleet/internal/infra/database"
	"botfleet/pkg/logger"
)

// TenantRepository implements tenant.Repository using Bun ORM.
type TenantRepository struct {
	db     bun.IDB
	logger logger.Logger
}

// NewTenantRepository creates a new tenant repository using Bun ORM.
func NewTenantRepository(db bun.IDB, logger logger.Logger) tenant.Repository {
	return &TenantRepository{db: db, logger: logger}
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	model := database.ToTenantModel(t)
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	var model database.TenantModel
	err := r.db.NewSelect().Model(&model).Where("name = ?", tenant.Normalize(name)).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return database.FromTenantModel(&model)
}

func (r *TenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	var models []database.TenantModel
	if err := r.db.NewSelect().Model(&models).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	tenants := make([]*tenant.Tenant, 0, len(models))
	for i := range models {
		t, err := database.FromTenantModel(&models[i])
		if err != nil {
			r.logger.WarnWithError("skipping invalid tenant row", err, logger.Fields{"name": models[i].Name})
			continue
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	model := database.ToTenantModel(t)
	result, err := r.db.NewUpdate().Model(model).Where("name = ?", t.Name()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) Exists(ctx context.Context, name string) (bool, error) {
	count, err := r.db.NewSelect().Model((*database.TenantModel)(nil)).Where("name = ?", tenant.Normalize(name)).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant existence: %w", err)
	}
	return count > 0, nil
}
