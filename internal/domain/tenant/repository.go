package tenant

import "context"

// Repository defines tenant persistence operations.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByName(ctx context.Context, name string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Exists(ctx context.Context, name string) (bool, error)
}
