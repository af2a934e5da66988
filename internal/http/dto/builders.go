package dto

import (
	"time"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/pairing"
	"botfleet/internal/domain/tenant"
	"botfleet/internal/usecases/registration"
)

// FeaturesDTO mirrors bot.Features over the wire.
type FeaturesDTO struct {
	AutoLike       bool   `json:"auto_like"`
	AutoReact      bool   `json:"auto_react"`
	AutoViewStatus bool   `json:"auto_view_status"`
	ChatAgent      bool   `json:"chat_agent"`
	Typing         string `json:"typing"`
}

func toFeaturesDTO(f bot.Features) FeaturesDTO {
	return FeaturesDTO{
		AutoLike:       f.AutoLike,
		AutoReact:      f.AutoReact,
		AutoViewStatus: f.AutoViewStatus,
		ChatAgent:      f.ChatAgent,
		Typing:         f.Typing.String(),
	}
}

func (f FeaturesDTO) toDomain() (bot.Features, error) {
	typing, err := bot.TypingModeFromString(f.Typing)
	if err != nil {
		return bot.Features{}, err
	}
	return bot.Features{
		AutoLike:       f.AutoLike,
		AutoReact:      f.AutoReact,
		AutoViewStatus: f.AutoViewStatus,
		ChatAgent:      f.ChatAgent,
		Typing:         typing,
	}, nil
}

// BotResponse represents a bot in API responses.
// @Description A single fleet bot
type BotResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Phone          string      `json:"phone"`
	Tenant         string      `json:"tenant"`
	IsGuest        bool        `json:"is_guest"`
	Status         string      `json:"status"`
	ApprovalStatus string      `json:"approval_status"`
	ApprovedAt     *time.Time  `json:"approved_at,omitempty"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
	ExpirationMos  int         `json:"expiration_months"`
	Features       FeaturesDTO `json:"features"`
	MessagesSent   int64       `json:"messages_sent"`
	MessagesRecv   int64       `json:"messages_received"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewBotResponse converts a domain bot into its API representation.
func NewBotResponse(b *bot.Bot) *BotResponse {
	resp := &BotResponse{
		ID:             b.ID().String(),
		Name:           b.Name(),
		Phone:          b.Phone().String(),
		Tenant:         b.Tenant(),
		IsGuest:        b.IsGuest(),
		Status:         b.Status().String(),
		ApprovalStatus: b.ApprovalStatus().String(),
		ApprovedAt:     b.ApprovedAt(),
		ExpirationMos:  b.ExpirationMonths(),
		Features:       toFeaturesDTO(b.Features()),
		MessagesSent:   b.MessagesSent(),
		MessagesRecv:   b.MessagesReceived(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
	}
	if exp, ok := b.ExpiresAt(); ok {
		resp.ExpiresAt = &exp
	}
	return resp
}

// BotListResponse represents a page of bots.
type BotListResponse struct {
	Bots       []*BotResponse      `json:"bots"`
	Pagination *PaginationResponse `json:"pagination"`
}

// NewBotListResponse converts a page of domain bots into its API representation.
func NewBotListResponse(bots []*bot.Bot, total, limit, offset int) *BotListResponse {
	resp := make([]*BotResponse, 0, len(bots))
	for _, b := range bots {
		resp = append(resp, NewBotResponse(b))
	}
	return &BotListResponse{Bots: resp, Pagination: NewPaginationResponse(total, limit, offset)}
}

// TenantResponse represents a tenant in API responses.
// @Description A single tenant capacity pool
type TenantResponse struct {
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	CurrentCount int       `json:"current_count"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewTenantResponse converts a domain tenant into its API representation.
func NewTenantResponse(t *tenant.Tenant) *TenantResponse {
	return &TenantResponse{
		Name:         t.Name(),
		Capacity:     t.Capacity(),
		CurrentCount: t.CurrentCount(),
		Status:       t.Status().String(),
		CreatedAt:    t.CreatedAt(),
		UpdatedAt:    t.UpdatedAt(),
	}
}

// NewTenantListResponse converts a list of domain tenants into its API representation.
func NewTenantListResponse(tenants []*tenant.Tenant) []*TenantResponse {
	resp := make([]*TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp = append(resp, NewTenantResponse(t))
	}
	return resp
}

// ActivityResponse represents a single audit log entry.
type ActivityResponse struct {
	ID        string    `json:"id"`
	BotID     string    `json:"bot_id"`
	Tenant    string    `json:"tenant"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActivityResponse converts a domain activity entry into its API representation.
func NewActivityResponse(a *activity.Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:        a.ID,
		BotID:     a.BotID,
		Tenant:    a.Tenant,
		Kind:      string(a.Kind),
		Detail:    a.Detail,
		CreatedAt: a.CreatedAt,
	}
}

// NewActivityListResponse converts a list of domain activity entries into its API representation.
func NewActivityListResponse(activities []*activity.Activity) []*ActivityResponse {
	resp := make([]*ActivityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, NewActivityResponse(a))
	}
	return resp
}

// PairingSessionResponse represents an ephemeral guest pairing attempt.
type PairingSessionResponse struct {
	RequestID string    `json:"request_id"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code,omitempty"`
	Outcome   string    `json:"outcome"`
	StartedAt time.Time `json:"started_at"`
}

// NewPairingSessionResponse converts a domain pairing session into its API representation.
func NewPairingSessionResponse(s *pairing.Session) *PairingSessionResponse {
	return &PairingSessionResponse{
		RequestID: s.RequestID,
		Phone:     s.Phone,
		Code:      s.Code,
		Outcome:   s.Outcome.String(),
		StartedAt: s.StartedAt,
	}
}

// RegistrationCheckResponse reports whether a phone number is already
// registered somewhere on the fleet and, if so, whether the hosting bot
// lives on the tenant making the check.
type RegistrationCheckResponse struct {
	Registered    bool         `json:"registered"`
	HostingTenant string       `json:"hosting_tenant,omitempty"`
	CurrentTenant string       `json:"current_tenant"`
	HasBotHere    bool         `json:"has_bot_here"`
	Bot           *BotResponse `json:"bot,omitempty"`
}

// NewRegistrationCheckResponse converts a registration.RegistrationCheck
// result into its API representation.
func NewRegistrationCheckResponse(c *registration.RegistrationCheck) *RegistrationCheckResponse {
	resp := &RegistrationCheckResponse{
		Registered:    c.Registered,
		HostingTenant: c.HostingTenant,
		CurrentTenant: c.CurrentTenant,
		HasBotHere:    c.HasBotHere,
	}
	if c.Bot != nil {
		resp.Bot = NewBotResponse(c.Bot)
	}
	return resp
}

// ValidateCredentialsResponse reports whether a raw credential blob is
// structurally valid, and the phone number/normalized blob it carries.
type ValidateCredentialsResponse struct {
	Valid          bool   `json:"valid"`
	Phone          string `json:"phone,omitempty"`
	NormalizedBlob string `json:"normalized_blob,omitempty"`
}
