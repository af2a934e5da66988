package dto

import (
	"errors"
	"fmt"
	"net/http"

	"botfleet/internal/domain/bot"
	"botfleet/internal/domain/credential"
	"botfleet/internal/domain/pairing"
	"botfleet/internal/domain/registry"
	"botfleet/internal/domain/tenant"
	pkgerrors "botfleet/pkg/errors"
)

// ErrorCode represents standardized error codes for DTOs
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeConflict         ErrorCode = "CONFLICT"
	ErrorCodeUnprocessable    ErrorCode = "UNPROCESSABLE"
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// String returns the string representation of ErrorCode
func (ec ErrorCode) String() string {
	return string(ec)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error
func (ec ErrorCode) HTTPStatusCode() int {
	switch ec {
	case ErrorCodeValidationFailed, ErrorCodeInvalidInput:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeUnprocessable:
		return http.StatusUnprocessableEntity
	case ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DTOError represents a structured error for DTOs
type DTOError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	StatusCode int                    `json:"-"`
}

func (de *DTOError) Error() string {
	if de.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", de.Code, de.Message, de.Details)
	}
	return fmt.Sprintf("%s: %s", de.Code, de.Message)
}

// NewDTOError creates a new DTO error
func NewDTOError(code ErrorCode, message string) *DTOError {
	return &DTOError{Code: code, Message: message, StatusCode: code.HTTPStatusCode()}
}

// WithDetails adds details to the error
func (de *DTOError) WithDetails(details string) *DTOError {
	de.Details = details
	return de
}

// WithContext adds context to the error
func (de *DTOError) WithContext(key string, value interface{}) *DTOError {
	if de.Context == nil {
		de.Context = make(map[string]interface{})
	}
	de.Context[key] = value
	return de
}

// ToErrorResponse converts the DTO error to an error response
func (de *DTOError) ToErrorResponse() *ErrorResponse {
	return NewErrorResponseWithContext(de.Message, de.Code.String(), de.Details, de.Context)
}

// ErrorMapper maps domain and usecase errors to DTO errors
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps an error returned by a usecase into a DTO error carrying
// the right HTTP status.
func (em *ErrorMapper) MapError(err error) *DTOError {
	if err == nil {
		return nil
	}

	var botErr *bot.Error
	if errors.As(err, &botErr) {
		return em.mapBotError(botErr)
	}

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return NewDTOError(ErrorCode(appErr.Code), appErr.Message).
			WithDetails(appErr.Details).
			WithContext("app_error_type", string(appErr.Type))
	}

	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return NewDTOError(ErrorCodeNotFound, "tenant not found")
	case errors.Is(err, tenant.ErrTenantAlreadyExists):
		return NewDTOError(ErrorCodeConflict, "tenant already exists")
	case errors.Is(err, tenant.ErrAtCapacity):
		return NewDTOError(ErrorCodeUnprocessable, "tenant is at capacity")
	case errors.Is(err, tenant.ErrSuspended):
		return NewDTOError(ErrorCodeUnprocessable, "tenant is suspended")
	case errors.Is(err, registry.ErrEntryNotFound):
		return NewDTOError(ErrorCodeNotFound, "registry entry not found")
	case errors.Is(err, registry.ErrEntryAlreadyExists):
		return NewDTOError(ErrorCodeConflict, "registry entry already exists")
	case errors.Is(err, credential.ErrBadEncoding), errors.Is(err, credential.ErrBadJSON),
		errors.Is(err, credential.ErrMissingFields), errors.Is(err, credential.ErrNoPhone),
		errors.Is(err, credential.ErrPhoneMismatch):
		return NewDTOError(ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, pairing.ErrSessionNotFound):
		return NewDTOError(ErrorCodeNotFound, "pairing session not found")
	case errors.Is(err, pairing.ErrTimedOut):
		return NewDTOError(ErrorCodeUnprocessable, "pairing attempt timed out")
	case errors.Is(err, pairing.ErrAuthFailed):
		return NewDTOError(ErrorCodeUnprocessable, "pairing authentication failed")
	}

	return NewDTOError(ErrorCodeInternalError, "internal server error").WithDetails(err.Error())
}

func (em *ErrorMapper) mapBotError(e *bot.Error) *DTOError {
	code := ErrorCodeInternalError
	switch e.Code {
	case bot.ErrCodeNotFound:
		code = ErrorCodeNotFound
	case bot.ErrCodeTenantFull, bot.ErrCodeNotApproved, bot.ErrCodeRejected, bot.ErrCodeDormant,
		bot.ErrCodeMigrationSame, bot.ErrCodeSkipped:
		code = ErrorCodeUnprocessable
	case bot.ErrCodeTenantUnknown, bot.ErrCodeBadDuration, bot.ErrCodeInvalidApproval:
		code = ErrorCodeInvalidInput
	case bot.ErrCodeDuplicateThis, bot.ErrCodeDuplicateOther, bot.ErrCodeInconsistentBot:
		code = ErrorCodeConflict
	}
	dtoErr := NewDTOError(code, e.Message)
	for k, v := range e.Context {
		dtoErr = dtoErr.WithContext(k, v)
	}
	return dtoErr
}

// MapErrorToResponse maps an error to an error response
func (em *ErrorMapper) MapErrorToResponse(err error) *ErrorResponse {
	return em.MapError(err).ToErrorResponse()
}
