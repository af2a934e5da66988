package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/credential"
	"botfleet/internal/http/dto"
	"botfleet/internal/usecases/registration"
	"botfleet/pkg/logger"
)

// RegistrationHandler handles bot admission, approval, and migration requests.
type RegistrationHandler struct {
	engine    *registration.Engine
	logger    logger.Logger
	validator *dto.DTOValidator
}

// NewRegistrationHandler creates a new registration handler.
func NewRegistrationHandler(engine *registration.Engine, log logger.Logger, v *dto.DTOValidator) *RegistrationHandler {
	return &RegistrationHandler{engine: engine, logger: log, validator: v}
}

func parseBotID(r *http.Request) (bot.ID, error) {
	return bot.IDFromString(chi.URLParam(r, "id"))
}

// Register handles POST /bots/register
// @Summary Register a new bot
// @Description Validates a credential blob, checks tenant capacity and the global registry, then admits a new bot
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body dto.RegisterBotRequest true "Registration request"
// @Success 201 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /bots/register [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterBotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	engineReq, err := req.ToEngineRequest()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.engine.Register(r.Context(), engineReq)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "bot registered", dto.NewBotResponse(resp.Bot))
}

// CheckRegistration handles GET /bots/check
// @Summary Check whether a phone number is already registered, and where
// @Tags Registration
// @Produce json
// @Param phone query string true "Phone number to look up"
// @Param tenant query string true "Tenant making the check"
// @Success 200 {object} dto.SuccessResponse{data=dto.RegistrationCheckResponse}
// @Router /bots/check [get]
func (h *RegistrationHandler) CheckRegistration(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	tenantName := r.URL.Query().Get("tenant")
	if phone == "" || tenantName == "" {
		writeBadRequest(w, "phone and tenant query parameters are required")
		return
	}
	result, err := h.engine.CheckRegistration(r.Context(), phone, tenantName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", dto.NewRegistrationCheckResponse(result))
}

// ValidateCredentials handles POST /bots/validate-credentials
// @Summary Structurally validate a credential blob without admitting a bot
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body dto.ValidateCredentialsRequest true "Credential blob to validate"
// @Success 200 {object} dto.SuccessResponse{data=dto.ValidateCredentialsResponse}
// @Router /bots/validate-credentials [post]
func (h *RegistrationHandler) ValidateCredentials(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateCredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	doc, err := credential.Parse(req.CredentialRaw)
	if err != nil {
		writeSuccess(w, http.StatusOK, "ok", &dto.ValidateCredentialsResponse{Valid: false})
		return
	}

	resp := &dto.ValidateCredentialsResponse{Valid: true}
	if phone, err := doc.ExtractPhone(); err == nil {
		resp.Phone = phone
		if req.Phone != "" && req.Phone != phone {
			resp.Valid = false
		}
	}
	if raw, err := json.Marshal(doc); err == nil {
		resp.NormalizedBlob = credential.Encode(raw)
	}

	writeSuccess(w, http.StatusOK, "ok", resp)
}

// Approve handles POST /bots/{id}/approve
// @Summary Approve a pending bot
// @Tags Registration
// @Accept json
// @Produce json
// @Param id path string true "Bot ID"
// @Param request body dto.ApproveBotRequest true "Approval duration"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Router /bots/{id}/approve [post]
func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	var req dto.ApproveBotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	b, err := h.engine.Approve(r.Context(), id, req.ApprovalMonths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot approved", dto.NewBotResponse(b))
}

// Reject handles POST /bots/{id}/reject
// @Summary Reject a pending bot
// @Tags Registration
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Router /bots/{id}/reject [post]
func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	b, err := h.engine.Reject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot rejected", dto.NewBotResponse(b))
}

// Revoke handles POST /bots/{id}/revoke
// @Summary Revoke an approved bot, returning it to pending
// @Tags Registration
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Router /bots/{id}/revoke [post]
func (h *RegistrationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	b, err := h.engine.Revoke(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot approval revoked", dto.NewBotResponse(b))
}

// UpdateCredentials handles PUT /bots/{id}/credentials
// @Summary Replace a bot's stored credential blob
// @Tags Registration
// @Accept json
// @Produce json
// @Param id path string true "Bot ID"
// @Param request body dto.UpdateCredentialsRequest true "New credential blob"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Router /bots/{id}/credentials [put]
func (h *RegistrationHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	var req dto.UpdateCredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	b, err := h.engine.UpdateCredentials(r.Context(), id, req.CredentialRaw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "credentials updated", dto.NewBotResponse(b))
}

// Migrate handles POST /bots/{id}/migrate
// @Summary Migrate a bot to a different tenant
// @Tags Registration
// @Accept json
// @Produce json
// @Param id path string true "Bot ID"
// @Param request body dto.MigrateBotRequest true "Destination tenant"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Router /bots/{id}/migrate [post]
func (h *RegistrationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	var req dto.MigrateBotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	b, err := h.engine.Migrate(r.Context(), id, req.ToTenant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot migrated", dto.NewBotResponse(b))
}

// Batch handles POST /bots/batch
// @Summary Apply the same operation (start, stop, restart or approve) across many bots
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body dto.BatchRequest true "Batch request"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/batch [post]
func (h *RegistrationHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ids := make([]bot.ID, 0, len(req.BotIDs))
	for _, raw := range req.BotIDs {
		id, err := bot.IDFromString(raw)
		if err != nil {
			writeBadRequest(w, "invalid bot id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	result := h.engine.Batch(r.Context(), ids, registration.BatchApply{
		Op:             registration.BatchOp(req.Op),
		ApprovalMonths: req.ApprovalMonths,
	})

	writeSuccess(w, http.StatusOK, "batch applied", result)
}
