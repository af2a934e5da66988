package dto

import (
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/validator"
)

// DTOValidator provides validation methods for request DTOs.
type DTOValidator struct {
	validator validator.Validator
}

// NewDTOValidator creates a new DTO validator
func NewDTOValidator(v validator.Validator) *DTOValidator {
	return &DTOValidator{validator: v}
}

// RegisterBotRequest is the HTTP body for admitting a new bot.
// @Description Request to register a new bot against a tenant
type RegisterBotRequest struct {
	Name          string      `json:"name" validate:"required"`
	CredentialRaw string      `json:"credential" validate:"required"`
	Phone         string      `json:"phone" validate:"required"`
	Tenant        string      `json:"tenant" validate:"required"`
	IsGuest       bool        `json:"is_guest"`
	Features      FeaturesDTO `json:"features"`
}

// ToEngineRequest converts the HTTP request into the registration engine's
// request shape.
func (r *RegisterBotRequest) ToEngineRequest() (registration.RegisterRequest, error) {
	features, err := r.Features.toDomain()
	if err != nil {
		return registration.RegisterRequest{}, err
	}
	return registration.RegisterRequest{
		Name:          r.Name,
		CredentialRaw: r.CredentialRaw,
		DeclaredPhone: r.Phone,
		Tenant:        r.Tenant,
		IsGuest:       r.IsGuest,
		Features:      features,
	}, nil
}

// ApproveBotRequest is the HTTP body for approving a bot.
type ApproveBotRequest struct {
	ApprovalMonths int `json:"approval_months" validate:"required,min=1,max=12"`
}

// MigrateBotRequest is the HTTP body for moving a bot to another tenant.
type MigrateBotRequest struct {
	ToTenant string `json:"to_tenant" validate:"required"`
}

// UpdateCredentialsRequest is the HTTP body for replacing a bot's stored credential blob.
type UpdateCredentialsRequest struct {
	CredentialRaw string `json:"credential" validate:"required"`
}

// BatchRequest is the HTTP body for applying one operation across many bots.
type BatchRequest struct {
	BotIDs         []string `json:"bot_ids" validate:"required,min=1"`
	Op             string   `json:"op" validate:"required,oneof=start stop restart approve"`
	ApprovalMonths int      `json:"approval_months"`
}

// ValidateCredentialsRequest is the HTTP body for structurally validating a
// credential blob ahead of registration, without admitting a bot.
type ValidateCredentialsRequest struct {
	CredentialRaw string `json:"credential" validate:"required"`
	Phone         string `json:"phone"`
}

// SendMessageRequest is the HTTP body for relaying an outbound message through a bot.
type SendMessageRequest struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// GeneratePairingCodeRequest is the HTTP body for starting a guest pairing attempt.
type GeneratePairingCodeRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// Validate runs struct-tag validation for any of the above request types.
func (dv *DTOValidator) Validate(req interface{}) error {
	return dv.validator.Validate(req)
}
