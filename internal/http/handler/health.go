package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"botfleet/internal/http/dto"
	"botfleet/internal/infra/container"
	"botfleet/pkg/logger"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
	logger    logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		container: container,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Health handles GET /health
// @Summary Health Check da aplicação
// @Description Verifica o status de saúde da aplicação e seus serviços dependentes
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse{data=dto.HealthResponse} "Aplicação saudável"
// @Failure 503 {object} dto.ErrorResponse "Serviços indisponíveis"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]interface{})

	// Check database health
	dbHealth := &dto.ServiceHealth{Status: "healthy"}
	if h.container != nil && h.container.DBConnection != nil {
		if err := h.container.Health(); err != nil {
			dbHealth.Status = "unhealthy"
			dbHealth.Message = err.Error()
		}
	} else {
		dbHealth.Status = "unhealthy"
		dbHealth.Message = "Database connection not initialized"
	}
	services["database"] = dbHealth

	// Check fleet supervisor health
	fleetHealth := &dto.ServiceHealth{Status: "healthy"}
	if h.container == nil || h.container.Supervisor == nil {
		fleetHealth.Status = "unhealthy"
		fleetHealth.Message = "fleet supervisor not initialized"
	}
	services["fleet"] = fleetHealth

	// Overall status
	overallStatus := "healthy"
	for _, service := range services {
		if serviceHealth, ok := service.(*dto.ServiceHealth); ok {
			if serviceHealth.Status != "healthy" {
				overallStatus = "unhealthy"
				break
			}
		}
	}

	response := &dto.HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Version:   "1.0.0", // Could be injected from build
		Uptime:    time.Since(h.startTime).String(),
		Services:  services,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
