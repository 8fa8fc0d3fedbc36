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
)

// Input error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Ledger input error codes
const (
	// ErrCodeInvalidQuantity is used when a quantity is zero or negative
	ErrCodeInvalidQuantity = "ERR_INVALID_QUANTITY"
	// ErrCodeInvalidCost is used when a cost is negative
	ErrCodeInvalidCost = "ERR_INVALID_COST"
	// ErrCodeInvalidRatio is used when a pack ratio is zero or negative
	ErrCodeInvalidRatio = "ERR_INVALID_RATIO"
	// ErrCodeInvalidUnit is used when a unit is not box, pack or piece
	ErrCodeInvalidUnit = "ERR_INVALID_UNIT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeContention is used when stock rows are locked by a concurrent
	// operation; the request is safe to retry
	ErrCodeContention = "ERR_CONTENTION"
)

// Business rule error codes
const (
	// ErrCodeInsufficientStock is used when an allocation cannot be satisfied
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeExceedsOriginal is used when a reversal would push a batch above
	// its original quantity
	ErrCodeExceedsOriginal = "ERR_EXCEEDS_ORIGINAL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidQuantity: http.StatusBadRequest,
	ErrCodeInvalidCost:     http.StatusBadRequest,
	ErrCodeInvalidRatio:    http.StatusBadRequest,
	ErrCodeInvalidUnit:     http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,
	ErrCodeContention: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeExceedsOriginal:   http.StatusUnprocessableEntity,
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
	"NOT_FOUND":          ErrCodeNotFound,
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"INVALID_QUANTITY":   ErrCodeInvalidQuantity,
	"INVALID_COST":       ErrCodeInvalidCost,
	"INVALID_RATIO":      ErrCodeInvalidRatio,
	"INVALID_UNIT":       ErrCodeInvalidUnit,
	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,
	"EXCEEDS_ORIGINAL":   ErrCodeExceedsOriginal,
	"CONTENTION":         ErrCodeContention,
}

// NormalizeErrorCode converts a domain error code to the API format.
// If the code is already in the API format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
