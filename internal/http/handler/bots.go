package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"botfleet/internal/http/dto"
	"botfleet/internal/usecases/botops"
	"botfleet/pkg/logger"
)

// BotOpsHandler handles bot lifecycle operations and tenant/bot listing.
type BotOpsHandler struct {
	uc     *botops.UseCase
	logger logger.Logger
}

// NewBotOpsHandler creates a new bot operations handler.
func NewBotOpsHandler(uc *botops.UseCase, log logger.Logger) *BotOpsHandler {
	return &BotOpsHandler{uc: uc, logger: log}
}

// Start handles POST /bots/{id}/start
// @Summary Bring a bot online
// @Tags Bots
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/{id}/start [post]
func (h *BotOpsHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	if err := h.uc.Start(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot starting", nil)
}

// Stop handles POST /bots/{id}/stop
// @Summary Take a bot offline
// @Tags Bots
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/{id}/stop [post]
func (h *BotOpsHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	if err := h.uc.Stop(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot stopped", nil)
}

// Restart handles POST /bots/{id}/restart
// @Summary Cycle a bot's connection
// @Tags Bots
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/{id}/restart [post]
func (h *BotOpsHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	if err := h.uc.Restart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot restarting", nil)
}

// Get handles GET /bots/{id}
// @Summary Fetch a single bot by id
// @Tags Bots
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /bots/{id} [get]
func (h *BotOpsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	b, err := h.uc.GetBot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", dto.NewBotResponse(b))
}

// Destroy handles DELETE /bots/{id}
// @Summary Stop a bot and permanently remove its credentials
// @Tags Bots
// @Produce json
// @Param id path string true "Bot ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/{id} [delete]
func (h *BotOpsHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	if err := h.uc.Destroy(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "bot destroyed", nil)
}

// SendMessage handles POST /bots/{id}/messages
// @Summary Relay an outbound message through a bot's live connection
// @Tags Bots
// @Accept json
// @Produce json
// @Param id path string true "Bot ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 200 {object} dto.SuccessResponse
// @Router /bots/{id}/messages [post]
func (h *BotOpsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseBotID(r)
	if err != nil {
		writeBadRequest(w, "invalid bot id")
		return
	}
	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.uc.SendMessage(r.Context(), id, req.To, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "message sent", nil)
}

// ListByTenant handles GET /tenants/{name}/bots
// @Summary List bots belonging to a tenant
// @Tags Bots
// @Produce json
// @Param name path string true "Tenant name"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.SuccessResponse{data=dto.BotListResponse}
// @Router /tenants/{name}/bots [get]
func (h *BotOpsHandler) ListByTenant(w http.ResponseWriter, r *http.Request) {
	tenantName := chi.URLParam(r, "name")
	pagination := dto.PaginationRequest{
		Limit:  atoiOrDefault(r.URL.Query().Get("limit"), 20),
		Offset: atoiOrDefault(r.URL.Query().Get("offset"), 0),
	}
	pagination.Normalize()

	bots, total, err := h.uc.ListBotsByTenant(r.Context(), tenantName, pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", dto.NewBotListResponse(bots, total, pagination.Limit, pagination.Offset))
}

func atoiOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
