package database

import (
	"time"

	"github.com/uptrace/bun"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/registry"
	"botfleet/internal/domain/tenant"
)

// BotModel is the persisted form of a fleet bot.
type BotModel struct {
	bun.BaseModel `bun:"table:fleet_bots"`

	ID             string     `bun:"id,pk,type:varchar(36)" json:"id"`
	Name           string     `bun:"name,notnull,type:varchar(100)" json:"name"`
	Phone          string     `bun:"phone,unique,notnull,type:varchar(20)" json:"phone"`
	Credentials    []byte     `bun:"credentials,type:bytea" json:"-"`
	Tenant         string     `bun:"tenant,notnull,type:varchar(50)" json:"tenant"`
	IsGuest        bool       `bun:"is_guest,notnull,default:false" json:"is_guest"`
	Status         string     `bun:"status,notnull,type:varchar(20),default:'offline'" json:"status"`
	ApprovalStatus string     `bun:"approval_status,notnull,type:varchar(20),default:'pending'" json:"approval_status"`
	ApprovedAt     *time.Time `bun:"approved_at,type:datetime" json:"approved_at,omitempty"`
	ExpirationMos  int        `bun:"expiration_months,notnull,default:0" json:"expiration_months"`
	AutoLike       bool       `bun:"feature_auto_like,notnull,default:false" json:"feature_auto_like"`
	AutoReact      bool       `bun:"feature_auto_react,notnull,default:false" json:"feature_auto_react"`
	AutoViewStatus bool       `bun:"feature_auto_view_status,notnull,default:false" json:"feature_auto_view_status"`
	ChatAgent      bool       `bun:"feature_chat_agent,notnull,default:false" json:"feature_chat_agent"`
	TypingMode     string     `bun:"feature_typing_mode,notnull,type:varchar(20),default:'none'" json:"feature_typing_mode"`
	MessagesSent   int64      `bun:"messages_sent,notnull,default:0" json:"messages_sent"`
	MessagesRecv   int64      `bun:"messages_received,notnull,default:0" json:"messages_received"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

// ToBotModel converts a domain bot to its persisted form.
func ToBotModel(b *bot.Bot) *BotModel {
	f := b.Features()
	return &BotModel{
		ID:             b.ID().String(),
		Name:           b.Name(),
		Phone:          b.Phone().String(),
		Credentials:    b.Credentials(),
		Tenant:         b.Tenant(),
		IsGuest:        b.IsGuest(),
		Status:         b.Status().String(),
		ApprovalStatus: b.ApprovalStatus().String(),
		ApprovedAt:     b.ApprovedAt(),
		ExpirationMos:  b.ExpirationMonths(),
		AutoLike:       f.AutoLike,
		AutoReact:      f.AutoReact,
		AutoViewStatus: f.AutoViewStatus,
		ChatAgent:      f.ChatAgent,
		TypingMode:     f.Typing.String(),
		MessagesSent:   b.MessagesSent(),
		MessagesRecv:   b.MessagesReceived(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
	}
}

// FromBotModel rehydrates a domain bot from its persisted form.
func FromBotModel(m *BotModel) (*bot.Bot, error) {
	id, err := bot.IDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	phone, err := bot.NewPhone(m.Phone)
	if err != nil {
		return nil, err
	}
	status, err := bot.StatusFromString(m.Status)
	if err != nil {
		return nil, err
	}
	approval, err := bot.ApprovalStatusFromString(m.ApprovalStatus)
	if err != nil {
		return nil, err
	}
	typing, err := bot.TypingModeFromString(m.TypingMode)
	if err != nil {
		return nil, err
	}

	features := bot.Features{
		AutoLike:       m.AutoLike,
		AutoReact:      m.AutoReact,
		AutoViewStatus: m.AutoViewStatus,
		ChatAgent:      m.ChatAgent,
		Typing:         typing,
	}

	return bot.Restore(
		id, m.Name, phone, m.Credentials, m.Tenant, m.IsGuest,
		status, approval, m.ApprovedAt, m.ExpirationMos,
		features, m.MessagesSent, m.MessagesRecv, m.CreatedAt, m.UpdatedAt,
	), nil
}

// TenantModel is the persisted form of a tenant.
type TenantModel struct {
	bun.BaseModel `bun:"table:fleet_tenants"`

	Name         string    `bun:"name,pk,type:varchar(50)" json:"name"`
	Capacity     int       `bun:"capacity,notnull" json:"capacity"`
	CurrentCount int       `bun:"current_count,notnull,default:0" json:"current_count"`
	Status       string    `bun:"status,notnull,type:varchar(20),default:'active'" json:"status"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp,type:datetime" json:"updated_at"`
}

// ToTenantModel converts a domain tenant to its persisted form.
func ToTenantModel(t *tenant.Tenant) *TenantModel {
	return &TenantModel{
		Name:         t.Name(),
		Capacity:     t.Capacity(),
		CurrentCount: t.CurrentCount(),
		Status:       t.Status().String(),
		CreatedAt:    t.CreatedAt(),
		UpdatedAt:    t.UpdatedAt(),
	}
}

// FromTenantModel rehydrates a domain tenant from its persisted form.
func FromTenantModel(m *TenantModel) (*tenant.Tenant, error) {
	status, err := tenant.StatusFromString(m.Status)
	if err != nil {
		return nil, err
	}
	return tenant.Restore(m.Name, m.Capacity, m.CurrentCount, status, m.CreatedAt, m.UpdatedAt), nil
}

// RegistryModel is the persisted form of a global phone-to-tenant mapping.
type RegistryModel struct {
	bun.BaseModel `bun:"table:fleet_registry"`

	Phone     string    `bun:"phone,pk,type:varchar(20)" json:"phone"`
	Tenant    string    `bun:"tenant,notnull,type:varchar(50)" json:"tenant"`
	BotID     string    `bun:"bot_id,notnull,type:varchar(36)" json:"bot_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
}

// ToRegistryModel converts a domain registry entry to its persisted form.
func ToRegistryModel(e *registry.Entry) *RegistryModel {
	return &RegistryModel{
		Phone:     e.Phone,
		Tenant:    e.Tenant,
		BotID:     e.BotID,
		CreatedAt: e.CreatedAt,
	}
}

// FromRegistryModel rehydrates a domain registry entry from its persisted form.
func FromRegistryModel(m *RegistryModel) *registry.Entry {
	return &registry.Entry{
		Phone:     m.Phone,
		Tenant:    m.Tenant,
		BotID:     m.BotID,
		CreatedAt: m.CreatedAt,
	}
}

// ActivityModel is the persisted form of an append-only audit record.
type ActivityModel struct {
	bun.BaseModel `bun:"table:fleet_activity"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	BotID     string    `bun:"bot_id,notnull,type:varchar(36)" json:"bot_id"`
	Tenant    string    `bun:"tenant,notnull,type:varchar(50)" json:"tenant"`
	Kind      string    `bun:"kind,notnull,type:varchar(30)" json:"kind"`
	Detail    string    `bun:"detail,type:text" json:"detail,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp,type:datetime" json:"created_at"`
}

// ToActivityModel converts a domain activity record to its persisted form.
func ToActivityModel(a *activity.Activity) *ActivityModel {
	return &ActivityModel{
		ID:        a.ID,
		BotID:     a.BotID,
		Tenant:    a.Tenant,
		Kind:      string(a.Kind),
		Detail:    a.Detail,
		CreatedAt: a.CreatedAt,
	}
}

// FromActivityModel rehydrates a domain activity record from its persisted form.
func FromActivityModel(m *ActivityModel) *activity.Activity {
	return &activity.Activity{
		ID:        m.ID,
		BotID:     m.BotID,
		Tenant:    m.Tenant,
		Kind:      activity.Kind(m.Kind),
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}
