package handler

import (
	"net/http"

	"botfleet/internal/http/dto"
	"botfleet/internal/usecases/botops"
	"botfleet/pkg/logger"
)

// TenantHandler exposes tenant-listing operations.
type TenantHandler struct {
	uc     *botops.UseCase
	logger logger.Logger
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(uc *botops.UseCase, log logger.Logger) *TenantHandler {
	return &TenantHandler{uc: uc, logger: log}
}

// List handles GET /tenants
// @Summary List every tenant known to the fleet
// @Tags Tenants
// @Produce json
// @Success 200 {object} dto.SuccessResponse{data=[]dto.TenantResponse}
// @Router /tenants [get]
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.uc.ListTenants(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", dto.NewTenantListResponse(tenants))
}
