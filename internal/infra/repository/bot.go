package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/bot"
	"botfleet/internal/infra/database"
	"botfleet/pkg/logger"
)

// BotRepository implements bot.Repository using Bun ORM.
type BotRepository struct {
	db     bun.IDB
	logger logger.Logger
}

// NewBotRepository creates a new bot repository using Bun ORM.
func NewBotRepository(db bun.IDB, logger logger.Logger) bot.Repository {
	return &BotRepository{db: db, logger: logger}
}

func (r *BotRepository) Create(ctx context.Context, b *bot.Bot) error {
	model := database.ToBotModel(b)
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		r.logger.ErrorWithError("failed to create bot", err, logger.Fields{"bot_id": b.ID().String()})
		return fmt.Errorf("failed to create bot: %w", err)
	}
	return nil
}

func (r *BotRepository) GetByID(ctx context.Context, id bot.ID) (*bot.Bot, error) {
	var model database.BotModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", id.String()).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, bot.ErrBotNotFound
		}
		return nil, fmt.Errorf("failed to get bot by id: %w", err)
	}
	return database.FromBotModel(&model)
}

func (r *BotRepository) GetByPhone(ctx context.Context, phone bot.Phone) (*bot.Bot, error) {
	var model database.BotModel
	err := r.db.NewSelect().Model(&model).Where("phone = ?", phone.String()).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, bot.ErrBotNotFound
		}
		return nil, fmt.Errorf("failed to get bot by phone: %w", err)
	}
	return database.FromBotModel(&model)
}

func (r *BotRepository) ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*bot.Bot, int, error) {
	var models []database.BotModel
	err := r.db.NewSelect().
		Model(&models).
		Where("tenant = ?", tenantName).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bots by tenant: %w", err)
	}

	total, err := r.db.NewSelect().Model((*database.BotModel)(nil)).Where("tenant = ?", tenantName).Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bots by tenant: %w", err)
	}

	return r.convertAll(models), total, nil
}

func (r *BotRepository) ListByApprovalStatus(ctx context.Context, status bot.ApprovalStatus, limit, offset int) ([]*bot.Bot, int, error) {
	var models []database.BotModel
	err := r.db.NewSelect().
		Model(&models).
		Where("approval_status = ?", status.String()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bots by approval status: %w", err)
	}

	total, err := r.db.NewSelect().Model((*database.BotModel)(nil)).Where("approval_status = ?", status.String()).Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bots by approval status: %w", err)
	}

	return r.convertAll(models), total, nil
}

func (r *BotRepository) Update(ctx context.Context, b *bot.Bot) error {
	model := database.ToBotModel(b)
	result, err := r.db.NewUpdate().Model(model).Where("id = ?", b.ID().String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update bot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return bot.ErrBotNotFound
	}
	return nil
}

func (r *BotRepository) Delete(ctx context.Context, id bot.ID) error {
	result, err := r.db.NewDelete().Model((*database.BotModel)(nil)).Where("id = ?", id.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete bot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return bot.ErrBotNotFound
	}
	return nil
}

func (r *BotRepository) CountByTenant(ctx context.Context, tenantName string) (int, error) {
	count, err := r.db.NewSelect().Model((*database.BotModel)(nil)).Where("tenant = ?", tenantName).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count bots by tenant: %w", err)
	}
	return count, nil
}

func (r *BotRepository) Exists(ctx context.Context, id bot.ID) (bool, error) {
	count, err := r.db.NewSelect().Model((*database.BotModel)(nil)).Where("id = ?", id.String()).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check bot existence: %w", err)
	}
	return count > 0, nil
}

func (r *BotRepository) convertAll(models []database.BotModel) []*bot.Bot {
	bots := make([]*bot.Bot, 0, len(models))
	for i := range models {
		b, err := database.FromBotModel(&models[i])
		if err != nil {
			r.logger.WarnWithError("skipping invalid bot row", err, logger.Fields{"bot_id": models[i].ID})
			continue
		}
		bots = append(bots, b)
	}
	return bots
}
