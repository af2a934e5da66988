package bot

import "context"

// Repository defines bot persistence operations.
type Repository interface {
	Create(ctx context.Context, b *Bot) error
	GetByID(ctx context.Context, id ID) (*Bot, error)
	GetByPhone(ctx context.Context, phone Phone) (*Bot, error)
	ListByTenant(ctx context.Context, tenant string, limit, offset int) ([]*Bot, int, error)
	ListByApprovalStatus(ctx context.Context, status ApprovalStatus, limit, offset int) ([]*Bot, int, error)
	Update(ctx context.Context, b *Bot) error
	Delete(ctx context.Context, id ID) error
	CountByTenant(ctx context.Context, tenant string) (int, error)
	Exists(ctx context.Context, id ID) (bool, error)
}
