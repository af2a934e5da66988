package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the audit event types the fleet records.
type Kind string

const (
	KindCreation   Kind = "creation"
	KindApproval   Kind = "approval"
	KindRejection  Kind = "rejection"
	KindRevocation Kind = "revocation"
	KindExpiration Kind = "expiration"
	KindMigration  Kind = "migration"
	KindStart      Kind = "start"
	KindStop       Kind = "stop"
	KindRestart    Kind = "restart"
	KindDestroy    Kind = "destroy"
	KindFailure    Kind = "failure"
)

// Activity is an immutable audit record attached to a bot and tenant.
type Activity struct {
	ID        string
	BotID     string
	Tenant    string
	Kind      Kind
	Detail    string
	CreatedAt time.Time
}

// New creates a new activity record ready for persistence.
func New(botID, tenantName string, kind Kind, detail string) *Activity {
	return &Activity{
		ID:        uuid.New().String(),
		BotID:     botID,
		Tenant:    tenantName,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}

// Repository defines append-only activity persistence operations.
type Repository interface {
	Append(ctx context.Context, a *Activity) error
	ListByBot(ctx context.Context, botID string, limit, offset int) ([]*Activity, error)
	ListByTenant(ctx context.Context, tenantName string, limit, offset int) ([]*Activity, error)
}
