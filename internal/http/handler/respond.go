package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"botfleet/internal/http/dto"
)

var errorMapper = dto.NewErrorMapper()

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, dto.NewSuccessResponse(message, data))
}

func writeError(w http.ResponseWriter, err error) {
	dtoErr := errorMapper.MapError(err)
	writeJSON(w, dtoErr.StatusCode, dtoErr.ToErrorResponse())
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, dto.NewDTOError(dto.ErrorCodeInvalidInput, message).ToErrorResponse())
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
