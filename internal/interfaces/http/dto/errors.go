package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeTimeout is used when the request deadline passes
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeLocked is used when another update of the same payment holds its lock
	ErrCodeLocked = "ERR_LOCKED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodePaymentDeleted is used when updating a soft-deleted payment
	ErrCodePaymentDeleted = "ERR_PAYMENT_DELETED"
	// ErrCodeAmountMismatch is used when item and payment totals differ
	ErrCodeAmountMismatch = "ERR_AMOUNT_MISMATCH"
	// ErrCodeExportUnavailable is used when no exporter is configured
	ErrCodeExportUnavailable = "ERR_EXPORT_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeEmptyPatch is used when an update sets no field
	ErrCodeEmptyPatch = "ERR_EMPTY_PATCH"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLocked:              http.StatusLocked,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodePaymentDeleted:    http.StatusUnprocessableEntity,
	ErrCodeAmountMismatch:    http.StatusUnprocessableEntity,
	ErrCodeExportUnavailable: http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeEmptyPatch:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"LOCKED":               ErrCodeLocked,
	"PAYMENT_DELETED":      ErrCodePaymentDeleted,
	"AMOUNT_MISMATCH":      ErrCodeAmountMismatch,
	"EMPTY_PATCH":          ErrCodeEmptyPatch,
	"EXPORT_UNAVAILABLE":   ErrCodeExportUnavailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format pass through; other unknown codes become
// ERR_<code> so they still read as API codes.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if len(code) > 4 && code[:4] == "ERR_" {
		return code
	}
	return "ERR_" + code
}
