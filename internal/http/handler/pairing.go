package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"botfleet/internal/http/dto"
	"botfleet/internal/usecases/pairing"
	"botfleet/pkg/logger"
)

// PairingHandler exposes the ephemeral guest pairing flow.
type PairingHandler struct {
	uc        *pairing.UseCase
	logger    logger.Logger
	validator *dto.DTOValidator
}

// NewPairingHandler creates a new pairing handler.
func NewPairingHandler(uc *pairing.UseCase, log logger.Logger, v *dto.DTOValidator) *PairingHandler {
	return &PairingHandler{uc: uc, logger: log, validator: v}
}

// Generate handles POST /pairing
// @Summary Start a guest pairing attempt and return a pairing code
// @Description Spins up an ephemeral WhatsApp device session scoped to a single phone number
// @Tags Pairing
// @Accept json
// @Produce json
// @Param request body dto.GeneratePairingCodeRequest true "Phone to pair"
// @Success 200 {object} dto.SuccessResponse{data=dto.PairingSessionResponse}
// @Router /pairing [post]
func (h *PairingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GeneratePairingCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	requestID := uuid.New().String()
	session, err := h.uc.GeneratePairingCode(r.Context(), requestID, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "pairing code generated", dto.NewPairingSessionResponse(session))
}

// Get handles GET /pairing/{requestID}
// @Summary Poll the outcome of a guest pairing attempt
// @Tags Pairing
// @Produce json
// @Param requestID path string true "Pairing request ID"
// @Success 200 {object} dto.SuccessResponse{data=dto.PairingSessionResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /pairing/{requestID} [get]
func (h *PairingHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	session, err := h.uc.GetGuestSession(r.Context(), requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", dto.NewPairingSessionResponse(session))
}
