package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidQuantity   = NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInvalidCost       = NewDomainError("INVALID_COST", "Cost cannot be negative")
	ErrInvalidRatio      = NewDomainError("INVALID_RATIO", "Unit conversion ratio must be positive")
	ErrInvalidUnit       = NewDomainError("INVALID_UNIT", "Unit must be one of box, pack or piece")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrExceedsOriginal   = NewDomainError("EXCEEDS_ORIGINAL", "Reversal would exceed the batch's original quantity")
	ErrContention        = NewDomainError("CONTENTION", "Stock rows are locked by another operation, retry later")
)
