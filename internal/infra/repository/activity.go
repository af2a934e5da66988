package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/activity"
	"botfleet/internal/infra/database"
	"botfleet/pkg/logger"
)

// ActivityRepository implements activity.Repository using Bun ORM.
type ActivityRepository struct {
	db     bun.IDB
	logger logger.Logger
}

// NewActivityRepository creates a new append-only activity repository using Bun ORM.
func NewActivityRepository(db bun.IDB, logger logger.Logger) activity.Repository {
	return &ActivityRepository{db: db, logger: logger}
}

func (r *ActivityRepository) Append(ctx context.Context, a *activity.Activity) error {
	model := database.ToActivityModel(a)
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByBot(ctx context.Context, botID string, limit, offset int) ([]*activity.Activity, error) {
	var models []database.ActivityModel
	err := r.db.NewSelect().
		Model(&models).
		Where("bot_id = ?", botID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity by bot: %w", err)
	}
	return convertActivities(models), nil
}

func (r *ActivityRepository) ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*activity.Activity, error) {
	var models []database.ActivityModel
	err := r.db.NewSelect().
		Model(&models).
		Where("tenant = ?", tenantName).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity by tenant: %w", err)
	}
	return convertActivities(models), nil
}

func convertActivities(models []database.ActivityModel) []*activity.Activity {
	out := make([]*activity.Activity, 0, len(models))
	for i := range models {
		out = append(out, database.FromActivityModel(&models[i]))
	}
	return out
}
