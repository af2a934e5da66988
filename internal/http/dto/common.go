package dto

import "time"

// SuccessResponse represents a generic success response
// @Description Standard success envelope returned by every endpoint
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"operation completed"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents a generic error response
// @Description Standard error envelope returned by every endpoint
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   string      `json:"error" example:"internal server error"`
	Code    string      `json:"code,omitempty" example:"INTERNAL_ERROR"`
	Details string      `json:"details,omitempty"`
	Context interface{} `json:"context,omitempty"`
}

// ValidationErrorResponse represents a validation error response
type ValidationErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Fields  []ValidationFieldError `json:"fields"`
}

// ValidationFieldError represents a field validation error
type ValidationFieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// PaginationRequest represents pagination parameters
type PaginationRequest struct {
	Limit  int `json:"limit" query:"limit" validate:"min=1,max=100" example:"20"`
	Offset int `json:"offset" query:"offset" validate:"min=0" example:"0"`
}

// Normalize fills in sane defaults for an unset pagination request.
func (p *PaginationRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// HealthResponse represents the health check response
// @Description Health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version" example:"1.0.0"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
	Services  map[string]interface{} `json:"services"`
}

// ServiceHealth represents the health status of a dependency
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{Success: true, Message: message, Data: data}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(errMsg, code, details string) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: errMsg, Code: code, Details: details}
}

// NewErrorResponseWithContext creates a new error response carrying extra context
func NewErrorResponseWithContext(errMsg, code, details string, context interface{}) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: errMsg, Code: code, Details: details, Context: context}
}

// NewValidationErrorResponse creates a new validation error response
func NewValidationErrorResponse(fields []ValidationFieldError) *ValidationErrorResponse {
	return &ValidationErrorResponse{Success: false, Error: "validation failed", Code: "VALIDATION_ERROR", Fields: fields}
}

// CalculatePages calculates the number of pages for pagination
func (p *PaginationResponse) CalculatePages() {
	if p.Limit > 0 {
		p.Pages = (p.Total + p.Limit - 1) / p.Limit
	}
}

// NewPaginationResponse creates a new pagination response
func NewPaginationResponse(total, limit, offset int) *PaginationResponse {
	pagination := &PaginationResponse{Total: total, Limit: limit, Offset: offset}
	pagination.CalculatePages()
	return pagination
}
