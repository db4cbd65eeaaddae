package models

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	CodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeBulkLoadRejected   = "BULK_LOAD_REJECTED"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource by id.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewNotFoundMessage reports a missing resource with a custom message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewIdentityNotFoundError is returned when a caller handle resolves to no user.
func NewIdentityNotFoundError(handle string) *AppError {
	return &AppError{
		Code:    CodeIdentityNotFound,
		Message: fmt.Sprintf("identity %q not found", handle),
	}
}

func NewTokenExpiredError() *AppError {
	return &AppError{
		Code:    CodeTokenExpired,
		Message: "Token has expired",
	}
}

func NewSourceUnavailableError(location string, err error) *AppError {
	return &AppError{
		Code:    CodeSourceUnavailable,
		Message: fmt.Sprintf("source %q is unavailable", location),
		Err:     err,
	}
}

func NewStorageUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStorageUnavailable,
		Message: "Storage is unavailable",
		Err:     err,
	}
}

func NewBulkLoadRejectedError(err error) *AppError {
	return &AppError{
		Code:    CodeBulkLoadRejected,
		Message: "Bulk load was rejected by storage",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code anywhere in err's chain, or "" if none.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// StatusForError maps an error to the HTTP status the API responds with.
func StatusForError(err error) int {
	switch ErrorCode(err) {
	case CodeNotFound, CodeIdentityNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict:
		return fiber.StatusConflict
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeTokenExpired:
		return fiber.StatusGone
	case CodeSourceUnavailable:
		return fiber.StatusBadGateway
	case CodeStorageUnavailable:
		return fiber.StatusServiceUnavailable
	case CodeBulkLoadRejected:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response.
// Wrapped causes are only exposed outside production.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Success: false}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Error = appErr.Message
		response.Code = appErr.Code
		if appErr.Err != nil && !isProductionEnv() {
			response.Details = appErr.Err.Error()
		}
	} else {
		response.Error = "Internal server error"
		response.Code = CodeInternal
		if err != nil && !isProductionEnv() {
			response.Details = err.Error()
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes err using the status derived from its code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusForError(err), err)
}

func isProductionEnv() bool {
	env := os.Getenv("APP_ENV")
	return env == "production" || env == "prod"
}
